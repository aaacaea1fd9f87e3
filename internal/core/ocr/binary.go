package ocr

import (
	"errors"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/joseph-ayodele/screenchat/internal/common"
	"github.com/joseph-ayodele/screenchat/internal/result"
)

// ResolveBinary finds name on PATH (or checks it, if it is a path) so a missing
// OCR backend is reported at startup instead of on the first image.
func ResolveBinary(name string) (string, error) {
	if name == "" {
		name = "tesseract"
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", common.NewAppError(common.CodeConfig,
			"OCR binary "+name+" not found; install tesseract or set TESSERACT_BIN", common.ErrNotFound)
	}
	return p, nil
}

var backendStderrHints = []string{
	"failed loading language",
	"error opening data file",
	"tessdata_prefix",
	"command not found",
}

// classifyExecFailure tells a missing/broken OCR backend apart from an image it could not read.
func classifyExecFailure(err error, stderr []string) result.Kind {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return result.BackendUnavailable
	}
	for _, s := range stderr {
		low := strings.ToLower(s)
		for _, hint := range backendStderrHints {
			if strings.Contains(low, hint) {
				return result.BackendUnavailable
			}
		}
	}
	return result.DecodeError
}
