package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/pljobs/internal/model"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load scraper output into the staging table",
	Long: "Replaces jobs_upload with the postings in FILE (JSON lines, one posting per line; " +
		"\"-\" reads stdin). Every import is also appended to jobs_upload_backup.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, logger := bootstrap()

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			logger.Error("failed to open input", "error", err)
			return model.NewPipelineError(model.ErrKindSource, "import", err)
		}
		defer f.Close()
		r = f
	}

	rows, err := readJSONL(r)
	if err != nil {
		logger.Error("failed to read input", "file", args[0], "error", err)
		return model.NewPipelineError(model.ErrKindSource, "import", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logFailure(logger, "failed to open store", err)
		return model.NewPipelineError(model.ErrKindStorage, "open", err)
	}
	defer st.Close()

	n, err := st.ReplaceStaged(ctx, rows)
	if err != nil {
		logFailure(logger, "failed to stage postings", err)
		return model.NewPipelineError(model.ErrKindStorage, "import", err)
	}
	logger.Info("postings staged", "file", args[0], "rows", n)
	return nil
}

// maxLineSize bounds one posting; descriptions can run long.
const maxLineSize = 4 << 20

// readJSONL decodes one RawPosting per non-blank line.
func readJSONL(r io.Reader) ([]model.RawPosting, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var rows []model.RawPosting
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var raw model.RawPosting
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, raw)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return rows, nil
}
