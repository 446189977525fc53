package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"flowsmith/document"
	"flowsmith/history"
)

const configFileName = ".flowsmith.yaml"

type SegmentConfig struct {
	ID    string `yaml:"id" validate:"required"`
	Name  string `yaml:"name" validate:"required"`
	Color string `yaml:"color" validate:"omitempty,hexcolor"`
}

type Config struct {
	SaveDirectory   string          `yaml:"save_directory"`
	Confirmations   bool            `yaml:"confirmations"`
	HistoryCapacity int             `yaml:"history_capacity" validate:"min=2,max=500"`
	LogFile         string          `yaml:"log_file"`
	LogLevel        string          `yaml:"log_level" validate:"oneof=debug info warn error"`
	Segments        []SegmentConfig `yaml:"segments" validate:"dive"`
}

func defaultConfig() *Config {
	return &Config{
		Confirmations:   true,
		HistoryCapacity: history.DefaultCapacity,
		LogLevel:        "info",
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configFileName)
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	config.SaveDirectory = expandPath(config.SaveDirectory)
	config.LogFile = expandPath(config.LogFile)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("%s fails %q (got %v)", first.Namespace(), first.Tag(), first.Value())
		}
		return err
	}
	return nil
}

func expandPath(value string) string {
	if value == "" {
		return value
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	if !filepath.IsAbs(value) {
		if abs, err := filepath.Abs(value); err == nil {
			value = abs
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	return filepath.Join(c.SaveDirectory, filename)
}

// DocumentSegments converts the configured segments for new documents.
func (c *Config) DocumentSegments() []document.Segment {
	if len(c.Segments) == 0 {
		return nil
	}
	segments := make([]document.Segment, 0, len(c.Segments))
	for _, s := range c.Segments {
		segments = append(segments, document.Segment{ID: s.ID, Name: s.Name, Color: s.Color})
	}
	return segments
}

// newLogger writes JSON logs to the configured file. The terminal belongs to
// the UI, so without a log file nothing is logged.
func newLogger(c *Config) (*zap.Logger, error) {
	if c.LogFile == "" {
		return zap.NewNop(), nil
	}

	zapConfig := zap.NewProductionConfig()
	switch c.LogLevel {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.OutputPaths = []string{c.LogFile}
	zapConfig.ErrorOutputPaths = []string{c.LogFile}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
