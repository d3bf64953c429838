package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/model"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, logger := bootstrap()

	ctx := context.Background()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logFailure(logger, "failed to open store", err)
		return model.NewPipelineError(model.ErrKindStorage, "open", err)
	}
	defer st.Close()

	runs, err := st.RecentRuns(ctx, runsLimit)
	if err != nil {
		logFailure(logger, "failed to read runs", err)
		return model.NewPipelineError(model.ErrKindStorage, "runs", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tRUN ID\tSTAGED\tBAD DATE\tDUPLICATES\tSTORED\tINSERTED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.RunID,
			r.Staged, r.BadDate, r.BatchDupes, r.Stored, r.Inserted,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
		)
	}
	return tw.Flush()
}
