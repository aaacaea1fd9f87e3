package app

import (
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/screenchat/internal/common"
	"github.com/joseph-ayodele/screenchat/internal/core/ocr"
	"github.com/joseph-ayodele/screenchat/internal/core/pipeline"
	"github.com/joseph-ayodele/screenchat/internal/llm/sonar"
)

// ReadConfig reads .env (if present), the optional YAML file and the environment.
// It does not validate.
func ReadConfig() (*common.Config, error) {
	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()
	return common.LoadConfig("")
}

// LoadConfig is ReadConfig followed by Validate.
func LoadConfig() (*common.Config, error) {
	cfg, err := ReadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewExtractor resolves the OCR binary and builds the extractor.
func NewExtractor(cfg *common.Config, logger *slog.Logger) (*ocr.Extractor, error) {
	bin, err := ocr.ResolveBinary(cfg.OCR.Tesseract)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved ocr binary", "path", bin)

	return ocr.NewExtractor(ocr.Config{
		Tesseract:     bin,
		Lang:          cfg.OCR.Lang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
		HeicConverter: cfg.OCR.HeicConverter,
	}, logger), nil
}

func NewChatClient(cfg *common.Config, logger *slog.Logger) *sonar.Client {
	return sonar.NewClient(sonar.Config{
		Endpoint: cfg.Chat.Endpoint,
		APIKey:   cfg.Chat.APIKey,
		Model:    cfg.Chat.Model,
		Timeout:  cfg.Chat.Timeout,
	}, logger)
}

// NewProcessor wires both stages.
func NewProcessor(cfg *common.Config, logger *slog.Logger) (*pipeline.Processor, *sonar.Client, error) {
	extractor, err := NewExtractor(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	chat := NewChatClient(cfg, logger)

	proc := pipeline.NewProcessor(logger, pipeline.Config{
		StopOnOCRError: cfg.Pipeline.StopOnOCRError,
	}, extractor, chat)
	return proc, chat, nil
}
