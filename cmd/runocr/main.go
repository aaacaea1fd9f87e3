package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/screenchat/internal/app"
	"github.com/joseph-ayodele/screenchat/internal/core/ocr"
)

// runocr runs only the OCR stage on one image and prints the transcript.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <image-path>")
		os.Exit(2)
	}

	cfg, err := app.ReadConfig()
	if err != nil {
		logger.Error("read config", "error", err)
		os.Exit(2)
	}
	extractor, err := app.NewExtractor(cfg, logger)
	if err != nil {
		logger.Error("ocr backend unavailable", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	res := extractor.Extract(ctx, ocr.Image{Path: os.Args[1]})
	dur := time.Since(start)

	if !res.OK() {
		logger.Error("text extraction failed",
			"kind", res.Kind().String(), "error", res.Err(), "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"bytes", len(res.Text),
		"duration_ms", dur.Milliseconds(),
	)
	fmt.Println(res.Text)
}
