package sonar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/screenchat/internal/common"
	"github.com/joseph-ayodele/screenchat/internal/llm"
	"github.com/joseph-ayodele/screenchat/internal/result"
)

const maxErrorBody = 512

// Ask implements llm.ChatClient: one user message, one synchronous POST, no retry.
func (c *Client) Ask(ctx context.Context, prompt string) result.Result {
	start := time.Now()
	logger := common.LoggerFrom(ctx, c.logger)

	logger.Info("llm.ask.start", "model", c.cfg.Model, "prompt_len", len(prompt))

	raw, status, err := llm.SendJSON(ctx, c.http, c.cfg.Endpoint, llm.UserPrompt(c.cfg.Model, prompt), c.headers(), logger)
	if err != nil {
		var res result.Result
		if errors.Is(err, llm.ErrNon2xx) {
			res = result.FailStatus(status, statusDetail(status, raw))
		} else {
			res = result.Fail(result.TransportError, "", err)
		}
		logger.Error("llm.ask.failed",
			"kind", res.Kind().String(),
			"status", status,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return res
	}

	content, err := llm.ParseCompletion(raw)
	if err != nil {
		logger.Error("llm.ask.malformed_response",
			"error", err,
			"raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return result.Fail(result.MalformedResponse, "", err)
	}

	logger.Info("llm.ask.ok",
		"model", c.cfg.Model,
		"completion_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result.Success(content)
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
		"Accept":        "application/json",
	}
}

func statusDetail(status int, body []byte) string {
	detail := fmt.Sprintf("%d %s", status, http.StatusText(status))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return detail
	}
	if len(msg) > maxErrorBody {
		n := maxErrorBody
		// never split a multi-byte rune
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n] + "...(truncated)"
	}
	return detail + ": " + msg
}
