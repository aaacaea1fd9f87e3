package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/joseph-ayodele/screenchat/internal/app"
	"github.com/joseph-ayodele/screenchat/internal/console"
)

func main() {
	os.Exit(run())
}

func run() int {
	// stderr only; stdout carries the transcript and the answer
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 2
	}
	level.Set(cfg.SlogLevel())

	proc, chat, err := app.NewProcessor(cfg, logger)
	if err != nil {
		logger.Error("ocr backend unavailable", "error", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var path string
	var rl console.LineReader
	if len(os.Args) > 1 {
		path = os.Args[1]
	} else {
		inst, err := readline.New(console.PathPrompt)
		if err != nil {
			logger.Error("open terminal", "error", err)
			return 1
		}
		defer func() { _ = inst.Close() }()
		rl = inst
	}

	err = console.New(proc, os.Stdout, chat.Model(), logger).Run(ctx, rl, path)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, readline.ErrInterrupt), errors.Is(err, io.EOF):
		return 130
	default:
		logger.Debug("console run ended", "error", err)
		return 1
	}
}
