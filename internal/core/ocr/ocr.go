package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/screenchat/constants"
	"github.com/joseph-ayodele/screenchat/internal/common"
	"github.com/joseph-ayodele/screenchat/internal/result"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // passed as -l only when set; tesseract's default otherwise
	TessdataDir string

	PSM int // 0 = tesseract default
	OEM int // 0 = tesseract default

	HeicConverter string // "heif-convert" | "magick" | "sips"
}

// Image is the OCR input: a file on disk, or uploaded bytes.
// When Data is non-empty it wins over Path; Name only supplies the extension.
type Image struct {
	Path string
	Name string
	Data []byte
}

func (img Image) label() string {
	if img.Name != "" {
		return img.Name
	}
	return filepath.Base(img.Path)
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner swaps the command runner; tests use it to stub tesseract.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract runs OCR over the whole image and returns the trimmed transcript.
// Faults never escape as errors: they come back as a failed result.
func (e *Extractor) Extract(ctx context.Context, img Image) result.Result {
	start := time.Now()
	logger := common.LoggerFrom(ctx, e.logger)
	logger.Debug("ocr.extract.start", "image", img.label(), "in_memory", len(img.Data) > 0)

	path, cleanup, err := materialize(img)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return e.fail(logger, result.DecodeError, err, start)
	}

	if constants.IsHEICExt(filepath.Ext(path)) {
		out, warns, convCleanup, err := convertHEICtoPNG(ctx, e.runner, logger, e.cfg.HeicConverter, path)
		if convCleanup != nil {
			defer convCleanup()
		}
		if err != nil {
			return e.failExec(ctx, logger, err, warns, start)
		}
		path = out
	}

	format, err := checkDecodable(path)
	if err != nil {
		return e.fail(logger, result.DecodeError, err, start)
	}

	txt, stderr, err := e.tesseractOCR(ctx, logger, path)
	if err != nil {
		return e.failExec(ctx, logger, err, []string{stderr}, start)
	}
	txt = Normalize(txt)

	logger.Info("ocr.extract.ok",
		"image", img.label(),
		"format", format,
		"chars", len(txt),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result.Success(txt)
}

func (e *Extractor) fail(logger *slog.Logger, kind result.Kind, err error, start time.Time) result.Result {
	logger.Warn("ocr.extract.failed",
		"kind", kind.String(),
		"error", err,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result.Fail(kind, "", err)
}

// failExec reports a failed external command. A cancelled run says so in the
// detail and is not blamed on the backend.
func (e *Extractor) failExec(ctx context.Context, logger *slog.Logger, err error, stderr []string, start time.Time) result.Result {
	if cerr := ctx.Err(); cerr != nil {
		return e.fail(logger, result.DecodeError, fmt.Errorf("canceled: %w: %w", cerr, err), start)
	}
	return e.fail(logger, classifyExecFailure(err, stderr), err, start)
}

func (e *Extractor) tesseractArgs(path string) []string {
	// tesseract <file> stdout [-l lang] [--psm N] [--oem N] [--tessdata-dir D]
	args := []string{path, "stdout"}
	if e.cfg.Lang != "" {
		args = append(args, "-l", e.cfg.Lang)
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

func (e *Extractor) tesseractOCR(ctx context.Context, logger *slog.Logger, path string) (string, string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, logger, e.tesseractArgs(path)...)
	if err != nil {
		stderr := strings.TrimSpace(string(errb))
		if line := firstLine(stderr); line != "" {
			return "", stderr, fmt.Errorf("tesseract: %w: %s", err, line)
		}
		return "", stderr, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), "", nil
}

// materialize returns a readable path for img. Uploaded bytes are written into a
// private temp dir that cleanup removes.
func materialize(img Image) (string, func(), error) {
	if len(img.Data) > 0 {
		ext := constants.NormalizeExt(filepath.Ext(img.Name))
		if ext == "" {
			ext = "png"
		}
		tmpDir, err := os.MkdirTemp("", "screenchat-*")
		if err != nil {
			return "", nil, err
		}
		cleanup := func() { _ = os.RemoveAll(tmpDir) }
		path := filepath.Join(tmpDir, "upload."+ext)
		if err := os.WriteFile(path, img.Data, 0o600); err != nil {
			return "", cleanup, fmt.Errorf("write upload: %w", err)
		}
		return path, cleanup, nil
	}
	if img.Path == "" {
		return "", nil, errors.New("no image supplied")
	}
	st, err := os.Stat(img.Path)
	if err != nil {
		return "", nil, fmt.Errorf("open image: %w", err)
	}
	if st.IsDir() {
		return "", nil, fmt.Errorf("open image: %s is a directory", img.Path)
	}
	return img.Path, nil, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
