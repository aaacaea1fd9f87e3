package sonar

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/screenchat/constants"
)

// Config for the Perplexity Sonar client.
type Config struct {
	Endpoint string        // full chat/completions URL; default https://api.perplexity.ai/chat/completions
	APIKey   string        // sent as a static bearer token
	Model    string        // e.g. "sonar", "sonar-pro"
	Timeout  time.Duration // 0 = no client-side timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = constants.DefaultSonarEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultSonarModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }
