package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/screenchat/constants"
)

// DefaultConfigPath is read when SCREENCHAT_CONFIG is unset. A missing file is not an error.
const DefaultConfigPath = "screenchat.yaml"

// Config holds all application configuration
type Config struct {
	OCR      OCRConfig      `yaml:"ocr"`
	Chat     ChatConfig     `yaml:"chat"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
	LogLevel string         `yaml:"log_level"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string `yaml:"tesseract"`
	Lang          string `yaml:"lang"`
	PSM           int    `yaml:"psm"`
	OEM           int    `yaml:"oem"`
	TessdataDir   string `yaml:"tessdata_dir"`
	HeicConverter string `yaml:"heic_converter"`
}

// ChatConfig holds the chat-completion endpoint configuration
type ChatConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"-"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// PipelineConfig controls how the two stages are chained
type PipelineConfig struct {
	StopOnOCRError bool `yaml:"stop_on_ocr_error"`
}

// ServerConfig holds web-form related configuration
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		OCR: OCRConfig{
			Tesseract:     "tesseract",
			HeicConverter: "magick",
		},
		Chat: ChatConfig{
			Endpoint: constants.DefaultSonarEndpoint,
			Model:    constants.DefaultSonarModel,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: constants.MaxUploadMBDefault,
		},
		LogLevel: "warn",
	}
}

// LoadConfig layers defaults, the optional YAML file at path and environment variables.
// An empty path means SCREENCHAT_CONFIG or DefaultConfigPath.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		path = getEnv("SCREENCHAT_CONFIG", DefaultConfigPath)
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, NewAppError(CodeConfig, "read config file "+path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.Lang = getEnv("TESSERACT_LANG", c.OCR.Lang)
	c.OCR.PSM = getEnvAsInt("TESSERACT_PSM", c.OCR.PSM)
	c.OCR.OEM = getEnvAsInt("TESSERACT_OEM", c.OCR.OEM)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.HeicConverter = getEnv("HEIC_CONVERTER", c.OCR.HeicConverter)

	c.Chat.APIKey = getEnv("PERPLEXITY_API_KEY", c.Chat.APIKey)
	c.Chat.Endpoint = getEnv("SONAR_ENDPOINT", c.Chat.Endpoint)
	c.Chat.Model = getEnv("SONAR_MODEL", c.Chat.Model)
	c.Chat.Timeout = getEnvAsDuration("SONAR_TIMEOUT", c.Chat.Timeout)

	c.Pipeline.StopOnOCRError = getEnvAsBool("STOP_ON_OCR_ERROR", c.Pipeline.StopOnOCRError)

	c.Server.Addr = getEnv("SCREENCHAT_ADDR", c.Server.Addr)
	c.Server.MaxUploadMB = getEnvAsInt("SCREENCHAT_MAX_UPLOAD_MB", c.Server.MaxUploadMB)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate fails fast on configuration the pipeline cannot run with.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("PERPLEXITY_API_KEY", c.Chat.APIKey, Required).
		Field("SONAR_ENDPOINT", c.Chat.Endpoint, Required, HTTPURL).
		Field("SONAR_MODEL", c.Chat.Model, Required).
		Field("TESSERACT_BIN", c.OCR.Tesseract, Required).
		Field("HEIC_CONVERTER", c.OCR.HeicConverter, OneOf("heif-convert", "magick", "sips")).
		Field("TESSERACT_PSM", c.OCR.PSM, NonNegative).
		Field("TESSERACT_OEM", c.OCR.OEM, NonNegative).
		Field("SCREENCHAT_MAX_UPLOAD_MB", c.Server.MaxUploadMB, NonNegative)
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to warn.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
