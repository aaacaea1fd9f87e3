package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/screenchat/internal/common"
	"github.com/joseph-ayodele/screenchat/internal/core/ocr"
	"github.com/joseph-ayodele/screenchat/internal/core/pipeline"
	"github.com/joseph-ayodele/screenchat/internal/result"
)

const PathPrompt = "Enter path to the screenshot image (e.g., screenshot.png): "

// ErrFileNotFound is returned when the given image path does not exist.
var ErrFileNotFound = common.NewAppError(common.CodeInput, "file not found", common.ErrNotFound)

// LineReader is satisfied by *readline.Instance.
type LineReader interface {
	Readline() (string, error)
}

// Responder is satisfied by *pipeline.Processor.
type Responder interface {
	Respond(ctx context.Context, img ocr.Image, obs pipeline.Observer) pipeline.Outcome
}

// Console is the prompt/print driver: one image path in, transcript and answer out.
type Console struct {
	responder Responder
	out       io.Writer
	model     string
	logger    *slog.Logger
}

func New(responder Responder, out io.Writer, model string, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{responder: responder, out: out, model: model, logger: logger}
}

// Run handles one screenshot. path may be empty, in which case it is read from rl.
func (c *Console) Run(ctx context.Context, rl LineReader, path string) error {
	c.printf("Screenshot Chatbot via Perplexity Sonar (%s)\n\n", c.model)

	if path == "" && rl != nil {
		line, err := rl.Readline()
		if err != nil {
			return common.WrapError(err, "read image path")
		}
		path = line
	}
	path = cleanPath(path)

	if !isFile(path) {
		c.logger.Debug("console.file_not_found", "path", path)
		c.printf("[ERROR] File not found.\n")
		return ErrFileNotFound
	}

	c.printf("Extracting text from image...\n")
	c.responder.Respond(ctx, ocr.Image{Path: path}, c)
	return nil
}

func (c *Console) OnTranscript(r result.Result) {
	if r.OK() && r.Text == "" {
		c.printf("[WARNING] No text found in image.\n")
		return
	}
	c.printf("\nExtracted Text:\n%s\n\n", r.Display())
}

func (c *Console) OnAsk(string) {
	c.printf("Sending to Perplexity Sonar...\n")
}

func (c *Console) OnCompletion(r result.Result) {
	c.printf("\nAI Response:\n%s\n\n", r.Display())
}

func (c *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(c.out, format, args...); err != nil {
		c.logger.Warn("console.write_failed", "error", err)
	}
}

// cleanPath trims whitespace and the quotes terminals add to dragged-in files.
func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 && (p[0] == '"' && p[len(p)-1] == '"' || p[0] == '\'' && p[len(p)-1] == '\'') {
		p = p[1 : len(p)-1]
	}
	return p
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
