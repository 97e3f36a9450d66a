package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/camdev"
	"github.com/urfave/cli"
)

// setupLogging installs a text logger on stderr. The -v and -vv flags
// take precedence over the job file level.
func setupLogging(ctx *cli.Context, level slog.Level) *slog.Logger {
	if ctx.GlobalBool("v") {
		level = slog.LevelInfo
	}
	if ctx.GlobalBool("vv") {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if ctx.App != nil && ctx.App.ErrWriter != nil {
		w = ctx.App.ErrWriter
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	camdev.SetLogger(logger)
	return logger
}
