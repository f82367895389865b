package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/umadb/umascope/internal/utils"
	"github.com/umadb/umascope/pkg/audit"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Validate the unified artifact against the raw corpora",
	Long: `Audits the artifact for duplicates, non-normalized scores and
vocabulary, missing fields, and source entries that never made it into the
output. Exits non-zero when errors are found.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		artifactPath := stringSetting(cmd, "artifact", "output.path")
		ratingsPath := stringSetting(cmd, "ratings", "sources.ratings")
		reviewsPath := stringSetting(cmd, "reviews", "sources.reviews")

		artifact, err := os.ReadFile(artifactPath)
		if err != nil {
			return fmt.Errorf("reading artifact: %w", err)
		}

		ratingsRaw := readOptionalCorpus(ratingsPath)
		reviewsRaw := readOptionalCorpus(reviewsPath)

		report := audit.Run(artifact, ratingsRaw, reviewsRaw)
		report.Write(os.Stdout)

		if report.HasErrors() {
			return fmt.Errorf("audit failed with %d errors", len(report.Errors))
		}
		return nil
	},
}

// readOptionalCorpus loads a raw source if present; cross-referencing is
// skipped for missing files rather than failing the audit.
func readOptionalCorpus(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		utils.Log.Warnf("raw corpus unavailable, skipping cross-reference: %s", path)
		return ""
	}
	return string(data)
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringP("artifact", "a", "", "Path to the unified JSON artifact")
	auditCmd.Flags().StringP("ratings", "r", "", "Path to the raw ratings corpus")
	auditCmd.Flags().StringP("reviews", "w", "", "Path to the raw reviews corpus")
}
