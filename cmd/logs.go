package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recognition attempt history",
	RunE:  runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().Int("hours", 0, "Only show attempts from the last N hours (0 = all)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	var since time.Time
	if hours := mustGetInt(cmd, "hours"); hours > 0 {
		since = time.Now().Add(-time.Duration(hours) * time.Hour)
	}

	entries, err := repos.logs.List(ctx, since)
	if err != nil {
		return fmt.Errorf("listing recognition logs: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No recognition attempts")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tPERSON\tSCORE")
	for _, e := range entries {
		name := e.PersonName
		if e.Status == database.StatusUnknown {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Status, name, e.Confidence)
	}
	return w.Flush()
}
