package main

import (
	"errors"
	"os"

	"github.com/amishk599/pljobs/internal/model"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a fatal batch failure to a process exit status so cron and
// systemd can tell bad config from a broken database.
func exitCode(err error) int {
	var perr *model.PipelineError
	if !errors.As(err, &perr) {
		return 1
	}
	switch perr.Kind {
	case model.ErrKindConfig:
		return 2
	case model.ErrKindSource:
		return 3
	case model.ErrKindStorage:
		return 4
	case model.ErrKindCancelled:
		return 130
	default:
		return 1
	}
}
