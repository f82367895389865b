package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/umadb/umascope/pkg/export"
	"github.com/umadb/umascope/pkg/unify"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the unified artifact as a markdown document",
	RunE: func(cmd *cobra.Command, args []string) error {
		artifactPath := stringSetting(cmd, "artifact", "output.path")
		outPath, _ := cmd.Flags().GetString("out")

		entities, err := unify.ReadArtifact(artifactPath)
		if err != nil {
			return fmt.Errorf("reading artifact: %w", err)
		}

		md := export.Markdown(entities)
		if outPath == "" {
			fmt.Print(md)
			return nil
		}
		if err := os.WriteFile(outPath, []byte(md), 0644); err != nil {
			return fmt.Errorf("writing markdown: %w", err)
		}
		fmt.Printf("Wrote %d entities to %s\n", len(entities), outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("artifact", "a", "", "Path to the unified JSON artifact")
	exportCmd.Flags().StringP("out", "o", "", "Markdown output path (stdout when empty)")
}
