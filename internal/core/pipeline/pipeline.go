package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/screenchat/internal/common"
	"github.com/joseph-ayodele/screenchat/internal/core/ocr"
	"github.com/joseph-ayodele/screenchat/internal/llm"
	"github.com/joseph-ayodele/screenchat/internal/result"
)

// TextExtractor is Stage 1: image -> transcript.
type TextExtractor interface {
	Extract(ctx context.Context, img ocr.Image) result.Result
}

// Observer is told about each stage as it happens, so a console can print the
// transcript before the model has answered. Methods may be no-ops.
type Observer interface {
	OnTranscript(r result.Result)
	OnAsk(prompt string)
	OnCompletion(r result.Result)
}

type Config struct {
	// StopOnOCRError ends the run after a failed OCR stage. By default the
	// "[OCR ERROR] ..." text is sent to the model like any other transcript.
	StopOnOCRError bool
}

// Outcome is everything one run produced.
type Outcome struct {
	Transcript result.Result
	Completion result.Result
	// Asked is false when the chat stage never ran.
	Asked bool
	// Skipped is true when OCR succeeded but found no text.
	Skipped bool
}

// Processor chains OCR then the chat client.
type Processor struct {
	logger    *slog.Logger
	cfg       Config
	extractor TextExtractor
	chat      llm.ChatClient
}

func NewProcessor(logger *slog.Logger, cfg Config, extractor TextExtractor, chat llm.ChatClient) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, cfg: cfg, extractor: extractor, chat: chat}
}

// Respond runs respond(image) = chat(extract(image)). obs may be nil.
func (p *Processor) Respond(ctx context.Context, img ocr.Image, obs Observer) Outcome {
	start := time.Now()
	logger := common.LoggerFrom(ctx, p.logger)
	var out Outcome

	// 1) OCR stage
	out.Transcript = p.extractor.Extract(ctx, img)
	if obs != nil {
		obs.OnTranscript(out.Transcript)
	}

	prompt, ok := p.promptFor(out.Transcript)
	if !ok {
		out.Skipped = out.Transcript.OK()
		logger.Info("processor.chat.skipped",
			"empty_transcript", out.Skipped,
			"ocr_kind", out.Transcript.Kind().String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return out
	}

	// 2) chat stage
	if obs != nil {
		obs.OnAsk(prompt)
	}
	out.Completion = p.chat.Ask(ctx, prompt)
	out.Asked = true
	if obs != nil {
		obs.OnCompletion(out.Completion)
	}

	logger.Info("processor.respond.done",
		"ocr_kind", out.Transcript.Kind().String(),
		"chat_kind", out.Completion.Kind().String(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}

// promptFor decides whether the chat stage runs and with what text.
func (p *Processor) promptFor(transcript result.Result) (string, bool) {
	if !transcript.OK() {
		if p.cfg.StopOnOCRError {
			return "", false
		}
		return transcript.Display(), true
	}
	if transcript.Text == "" {
		return "", false
	}
	return transcript.Text, true
}
