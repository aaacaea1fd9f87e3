package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// maxStderr bounds the stderr kept from tesseract or a HEIC converter. Failure
// details only use its first line; the rest is for the logs.
const maxStderr = 8 << 10

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

// Run executes name and returns its stdout and its stderr capped at maxStderr.
func (execRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	logger.Debug("ocr.exec.start", "cmd", name, "args", args)

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	stderr := boundStderr(errb.Bytes())

	if err != nil {
		logger.Warn("ocr.exec.failed",
			"cmd", name,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", string(stderr),
		)
	} else {
		logger.Debug("ocr.exec.ok",
			"cmd", name,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len(),
		)
	}
	return out.Bytes(), stderr, err
}

func boundStderr(b []byte) []byte {
	if len(b) <= maxStderr {
		return b
	}
	bounded := make([]byte, 0, maxStderr+len(truncatedSuffix))
	bounded = append(bounded, b[:maxStderr]...)
	return append(bounded, truncatedSuffix...)
}

const truncatedSuffix = "...(truncated)"
