package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/screenchat/internal/app"
)

// runllm sends a prompt (arguments, or stdin when none) straight to the chat endpoint.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	prompt := strings.Join(os.Args[1:], " ")
	if prompt == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("read stdin", "error", err)
			os.Exit(2)
		}
		prompt = strings.TrimSpace(string(b))
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	chat := app.NewChatClient(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	res := chat.Ask(ctx, prompt)
	logger.Info("llm call done",
		"model", chat.Model(),
		"ok", res.OK(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if !res.OK() {
		fmt.Fprintln(os.Stderr, res.Display())
		os.Exit(1)
	}
	fmt.Println(res.Text)
}
