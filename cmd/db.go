package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/umadb/umascope/pkg/storage"
	"github.com/umadb/umascope/pkg/unify"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the local entity cache",
}

// dbLoadCmd represents the load command
var dbLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the unified artifact into the cache, reporting changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cacheDBPath(cmd)
		artifactPath := stringSetting(cmd, "artifact", "output.path")

		entities, err := unify.ReadArtifact(artifactPath)
		if err != nil {
			return fmt.Errorf("reading artifact: %w", err)
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		changes, err := db.Load(context.Background(), entities)
		if err != nil {
			return err
		}

		var added, updated, removed int
		for _, c := range changes {
			switch c.ChangeType {
			case "added":
				added++
			case "updated":
				updated++
			case "removed":
				removed++
			}
		}
		fmt.Printf("Loaded %d entities: %d added, %d updated, %d removed\n",
			len(entities), added, updated, removed)
		return nil
	},
}

// dbStatsCmd represents the stats command
var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-variant statistics about the cached entities.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cacheDBPath(cmd)

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "VARIANT\tENTITIES\tDESCRIBED\t")

		var totalEntities, totalDescribed int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t\n", s.Variant, s.EntityCount, s.Described)
			totalEntities += s.EntityCount
			totalDescribed += s.Described
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t\n", totalEntities, totalDescribed)

		w.Flush()
		return nil
	},
}

// dbShellCmd represents the shell command
var dbShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cacheDBPath(cmd)

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

func cacheDBPath(cmd *cobra.Command) string {
	dbPath, _ := cmd.Parent().PersistentFlags().GetString("dbpath")
	if dbPath == "" {
		dbPath = "umascope.sqlite"
	}
	return dbPath
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbLoadCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.AddCommand(dbShellCmd)
	dbCmd.PersistentFlags().StringP("dbpath", "d", "", "Path to the sqlite cache (default umascope.sqlite)")
	dbLoadCmd.Flags().StringP("artifact", "a", "", "Path to the unified JSON artifact")
}
