// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wxr2md/internal/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of the last convert run",
	Long: `Status reads the run manifest and prints the batch counts of the most
recent convert run, followed by every item that failed.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("manifest", "", "run manifest database (default "+manifest.DefaultPath+")")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("manifest")
	if path == "" {
		path = viper.GetString("manifest")
	}

	store, err := manifest.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	run, err := store.LastRun(ctx)
	if errors.Is(err, manifest.ErrNoRuns) {
		fmt.Println("No runs recorded.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Last run %s (%s), started %s", run.ID, run.Input, humanize.Time(run.Started))
	if run.Finished.IsZero() {
		fmt.Println(", did not finish")
	} else {
		fmt.Printf(", took %s\n", run.Finished.Sub(run.Started).Round(time.Millisecond))
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nBatch\tWritten\tSkipped\tRegenerated\tFailed")
	for _, b := range run.Batches {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", b.Name, b.Written, b.Skipped, b.Regenerated, b.Failed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	failures, err := store.Failures(ctx, run.ID)
	if err != nil {
		return err
	}
	if len(failures) == 0 {
		return nil
	}
	fmt.Printf("\n%d failed:\n", len(failures))
	for _, f := range failures {
		fmt.Printf("  [%s] %s -> %s: %s\n", f.Batch, f.Label, f.Dest, f.Error)
	}
	return nil
}
