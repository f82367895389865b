package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/umadb/umascope/pkg/fetch"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a published source page and extract raw corpus text",
	Long: `Downloads an HTML page, selects the content container, and flattens
it into the line-oriented plain text the unify command parses. Useful for
refreshing a raw corpus snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL := stringSetting(cmd, "url", "fetch.url")
		if pageURL == "" {
			return fmt.Errorf("no URL given: set --url or fetch.url in the config")
		}
		selector, _ := cmd.Flags().GetString("selector")
		outPath, _ := cmd.Flags().GetString("out")
		proxy, _ := cmd.Flags().GetString("proxy")

		client, err := fetch.NewClient(proxy)
		if err != nil {
			return err
		}
		text, err := client.Fetch(pageURL, selector)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", pageURL, err)
		}

		if outPath == "" {
			fmt.Print(text)
			return nil
		}
		if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
			return fmt.Errorf("writing corpus: %w", err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(text), outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringP("url", "u", "", "Page URL to download")
	fetchCmd.Flags().StringP("selector", "s", "", "CSS selector for the content container (whole body when empty)")
	fetchCmd.Flags().StringP("out", "o", "", "Corpus output path (stdout when empty)")
	fetchCmd.Flags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
}
