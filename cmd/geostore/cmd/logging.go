package cmd

import (
	"io"
	"log/slog"

	"github.com/ssargent/geostore/pkg/config"
)

// newLogger builds a text logger at the configured level
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
