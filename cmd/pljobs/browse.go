package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/browse"
	"github.com/amishk599/pljobs/internal/model"
)

// browseLimit caps the "all postings" preset.
const browseLimit = 2000

var browseFilters filterFlags

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse postings interactively (TUI)",
	Long:  "Shows a picker of posting sets, then a split-pane view of all loaded postings and those matching the filter flags.",
	RunE:  runBrowse,
}

func init() {
	browseFilters.register(browseCmd)
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, logger := bootstrap()

	f, err := browseFilters.filter()
	if err != nil {
		return err
	}

	// Any log output once the TUI is up corrupts the display.
	silent := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := openStore(context.Background(), cfg, silent)
	if err != nil {
		logFailure(logger, "failed to open store", err)
		return model.NewPipelineError(model.ErrKindStorage, "open", err)
	}
	defer st.Close()

	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)
	presets := []browse.Preset{
		{Label: "Current postings", Query: model.PostingQuery{ExpiresAfter: yesterday}},
		{Label: "Posted yesterday", Query: model.PostingQuery{PostedOn: yesterday.Format(model.DateLayout)}},
		{Label: "Posted today", Query: model.PostingQuery{PostedOn: now.Format(model.DateLayout)}},
		{Label: "All postings", Query: model.PostingQuery{Limit: browseLimit}},
	}

	for {
		choice, err := browse.RunPicker(presets)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		preset := presets[choice]

		postings, err := browse.RunLoader(preset.Label, func(ctx context.Context) ([]model.Posting, error) {
			return st.ListPostings(ctx, preset.Query)
		})
		if err != nil {
			fmt.Printf("Load error: %v\n", err)
			continue
		}
		if len(postings) == 0 {
			fmt.Printf("No postings for %q.\n", preset.Label)
			continue
		}

		quit, err := browse.Run(postings, f, browseFilters.label(), now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			return nil
		}
		if quit {
			return nil
		}
	}
}
