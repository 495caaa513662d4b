package app

import (
	"fmt"
	"io"

	"github.com/seomate/seomate/internal/config"
	"github.com/seomate/seomate/internal/logging"
)

// openLogger builds the file logger. A bad level falls back to info and an
// unusable log path falls back to a discarding logger. Both are reported on
// stderr since the log file may not exist.
func openLogger(cfg config.Config, stderr io.Writer) *logging.Logger {
	opts := logging.Options{Path: cfg.LogPath, Level: cfg.LogLevel}
	badLevel := false
	if _, err := logging.ParseLevel(opts.Level); err != nil {
		fmt.Fprintf(stderr, "seomate: %v, logging at info\n", err)
		opts.Level = "info"
		badLevel = true
	}

	log, err := logging.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "seomate: logging disabled: %v\n", err)
		return logging.Nop()
	}
	if badLevel {
		log.Warn("invalid log level, using info", "level", cfg.LogLevel)
	}
	return log
}
