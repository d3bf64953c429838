package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/digest"
	"github.com/amishk599/pljobs/internal/model"
)

var (
	exportFilters filterFlags
	exportPosted  string
	exportFormat  string
	exportOutput  string
	exportMessage bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export postings matching a digest filter",
	Long: "Reads postings (optionally only those posted on one day), applies the digest filter " +
		"and writes them as CSV or XLSX.",
	Example: "  pljobs export --posted yesterday --level junior --city krakow --format xlsx -o digest.xlsx",
	RunE:    runExport,
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVar(&exportPosted, "posted", "", "date_posted to export: YYYY-MM-DD, today or yesterday")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportMessage, "message", false, "also print the digest message to stderr")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger := bootstrap()
	now := time.Now()

	if exportFormat != "csv" && exportFormat != "xlsx" {
		return fmt.Errorf("unknown --format %q: want csv or xlsx", exportFormat)
	}
	day, err := postedOn(exportPosted, now)
	if err != nil {
		return err
	}
	f, err := exportFilters.filter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logFailure(logger, "failed to open store", err)
		return model.NewPipelineError(model.ErrKindStorage, "open", err)
	}
	defer st.Close()

	postings, err := st.ListPostings(ctx, model.PostingQuery{PostedOn: day})
	if err != nil {
		logFailure(logger, "failed to read postings", err)
		return model.NewPipelineError(model.ErrKindStorage, "export", err)
	}
	matched := digest.Apply(postings, f, now)

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		out, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		w = out
	}

	switch exportFormat {
	case "xlsx":
		err = digest.WriteXLSX(w, matched)
	default:
		err = digest.WriteCSV(w, matched)
	}
	if err != nil {
		logger.Error("export failed", "error", err)
		return err
	}

	if exportMessage {
		label := day
		if label == "" {
			label = "all dates"
		}
		fmt.Fprintln(os.Stderr, digest.Message(matched, label))
	}
	if exportOutput != "" {
		logger.Info("export written",
			"file", exportOutput,
			"format", exportFormat,
			"read", len(postings),
			"matched", len(matched),
			"filter", exportFilters.label(),
		)
	}
	return nil
}
