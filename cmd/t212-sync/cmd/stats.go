package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/config"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/db"
)

var statsRecent int

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show sync-run statistics",
	Long: `Show aggregate statistics over recorded sync runs.

Dry runs are excluded from the totals.

Example:
  t212-sync stats
  t212-sync stats --recent 20`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 10, "How many recent runs to list")
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	conn, err := db.Open(cfg.DBPath)
	exitOnError(err, "failed to open sync database")
	defer conn.Close()

	history := db.NewHistory(conn)

	stats, err := history.GetStats()
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Sync Statistics ===")
	fmt.Printf("Total runs:      %d\n", stats.TotalRuns)
	fmt.Printf("Entries created: %d\n", stats.TotalCreated)
	fmt.Printf("Entries updated: %d\n", stats.TotalUpdated)
	fmt.Printf("Skipped:         %d\n", stats.TotalSkipped)
	if stats.LastRun.Valid {
		fmt.Printf("Last run:        %s\n", stats.LastRun.String)
	} else {
		fmt.Println("Last run:        never")
	}

	runs, err := history.GetRecentRuns(statsRecent)
	exitOnError(err, "failed to get recent runs")

	if len(runs) > 0 {
		fmt.Println("\n=== Recent Runs ===")
		for _, run := range runs {
			label := ""
			if run.DryRun {
				label = " (dry run)"
			}
			fmt.Printf("%s  parsed=%d created=%d updated=%d skipped=%d v%d%s\n",
				run.StartedAt.Format("2006-01-02 15:04"),
				run.Parsed, run.Created, run.Updated, run.Skipped,
				run.ImportVersion, label)
		}
	}
	fmt.Println()
}
