package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/screenchat/constants"
	"github.com/joseph-ayodele/screenchat/internal/common"
	"github.com/joseph-ayodele/screenchat/internal/core/ocr"
	"github.com/joseph-ayodele/screenchat/internal/core/pipeline"
)

const uploadField = "image"

// Responder is satisfied by *pipeline.Processor.
type Responder interface {
	Respond(ctx context.Context, img ocr.Image, obs pipeline.Observer) pipeline.Outcome
}

type Handler struct {
	responder Responder
	model     string
	maxBytes  int64
	logger    *slog.Logger
}

func NewHandler(responder Responder, model string, maxUploadMB int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = constants.MaxUploadMBDefault
	}
	return &Handler{
		responder: responder,
		model:     model,
		maxBytes:  int64(maxUploadMB) << 20,
		logger:    logger,
	}
}

// uploadError carries the HTTP status and the message shown to the user.
type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string { return e.message }

// Form renders the empty page.
func (h *Handler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, pageTemplateName, page{Model: h.model})
}

// Upload runs the pipeline for the posted image and re-renders the page with the result.
func (h *Handler) Upload(c *gin.Context) {
	img, filename, uerr := h.readUpload(c)
	if uerr != nil {
		c.HTML(uerr.status, pageTemplateName, page{Model: h.model, Error: uerr.message})
		return
	}
	out := h.responder.Respond(c.Request.Context(), img, nil)
	c.HTML(http.StatusOK, pageTemplateName, renderPage(h.model, filename, out))
}

type respondResponse struct {
	Transcript      string `json:"transcript"`
	Completion      string `json:"completion,omitempty"`
	Asked           bool   `json:"asked"`
	Skipped         bool   `json:"skipped"`
	TranscriptError string `json:"transcript_error,omitempty"`
	CompletionError string `json:"completion_error,omitempty"`
}

// RespondJSON is the same flow for scripts: multipart in, JSON out.
func (h *Handler) RespondJSON(c *gin.Context) {
	img, _, uerr := h.readUpload(c)
	if uerr != nil {
		c.JSON(uerr.status, gin.H{"error": uerr.message})
		return
	}
	out := h.responder.Respond(c.Request.Context(), img, nil)

	resp := respondResponse{
		Transcript: out.Transcript.Display(),
		Asked:      out.Asked,
		Skipped:    out.Skipped,
	}
	if !out.Transcript.OK() {
		resp.TranscriptError = out.Transcript.Kind().String()
	}
	if out.Asked {
		resp.Completion = out.Completion.Display()
		if !out.Completion.OK() {
			resp.CompletionError = out.Completion.Kind().String()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// readUpload pulls the image out of the multipart form and checks it is a PNG or JPEG.
func (h *Handler) readUpload(c *gin.Context) (ocr.Image, string, *uploadError) {
	logger := common.LoggerFrom(c.Request.Context(), h.logger)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+(1<<20))

	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return ocr.Image{}, "", h.tooLarge()
		}
		logger.Debug("upload.missing_file", "error", err)
		return ocr.Image{}, "", &uploadError{http.StatusBadRequest, "Please choose a PNG or JPEG screenshot to upload."}
	}
	if fh.Size > h.maxBytes {
		return ocr.Image{}, fh.Filename, h.tooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		logger.Error("upload.open_failed", "error", err)
		return ocr.Image{}, fh.Filename, &uploadError{http.StatusBadRequest, "The uploaded file could not be read."}
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		logger.Error("upload.read_failed", "error", err)
		return ocr.Image{}, fh.Filename, &uploadError{http.StatusBadRequest, "The uploaded file could not be read."}
	}
	if len(data) == 0 {
		return ocr.Image{}, fh.Filename, &uploadError{http.StatusBadRequest, "The uploaded file is empty."}
	}

	ext, ok := constants.UploadContentTypes[http.DetectContentType(data)]
	if !ok {
		logger.Info("upload.unsupported_type", "filename", fh.Filename, "content_type", http.DetectContentType(data))
		return ocr.Image{}, fh.Filename, &uploadError{http.StatusUnsupportedMediaType, "Only PNG and JPEG images are accepted."}
	}

	base := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	if base == "" || base == "." {
		base = "upload"
	}
	return ocr.Image{Name: base + "." + ext, Data: data}, fh.Filename, nil
}

func (h *Handler) tooLarge() *uploadError {
	return &uploadError{
		http.StatusRequestEntityTooLarge,
		fmt.Sprintf("Images larger than %d MB are not accepted.", h.maxBytes>>20),
	}
}
