package server

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/screenchat/internal/common"
)

const requestIDHeader = "X-Request-ID"

// NewRouter wires the upload form, its JSON twin and the health check.
func NewRouter(h *Handler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.MaxMultipartMemory = h.maxBytes
	r.SetHTMLTemplate(template.Must(template.New(pageTemplateName).Parse(pageHTML)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", h.Form)
	r.POST("/", h.Upload)
	r.POST("/api/respond", h.RespondJSON)

	return r
}

// requestLogger tags each request with an id and logs it once it is served.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Header(requestIDHeader, id)

		c.Next()

		logger.Info("http.request",
			"req_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
