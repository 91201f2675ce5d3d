package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML configuration file.
type Config struct {
	Device   string  `yaml:"DEVICE"`
	SaveDir  string  `yaml:"SAVE_DIR"`
	LogLevel string  `yaml:"LOG_LEVEL"`
	Model    Model   `yaml:"MODEL"`
	Dataset  Dataset `yaml:"DATASET"`
	Test     Test    `yaml:"TEST"`
	Notify   Notify  `yaml:"NOTIFY"`

	// From the environment only.
	OnnxRuntimeLib string `yaml:"-"`
	TelegramToken  string `yaml:"-"`
}

type Model struct {
	Name       string `yaml:"NAME"`
	Backbone   string `yaml:"BACKBONE"`
	InputName  string `yaml:"INPUT_NAME"`
	OutputName string `yaml:"OUTPUT_NAME"`
}

type Dataset struct {
	Name    string `yaml:"NAME"`
	Palette string `yaml:"PALETTE"` // optional palette file, overrides the built-in table
}

type Test struct {
	ModelPath       string `yaml:"MODEL_PATH"`
	File            string `yaml:"FILE"`
	ImageSize       []int  `yaml:"IMAGE_SIZE"`
	Overlay         bool   `yaml:"OVERLAY"`
	Glob            string `yaml:"GLOB"`
	ContinueOnError bool   `yaml:"CONTINUE_ON_ERROR"`
}

type Notify struct {
	TelegramChatID int64 `yaml:"TELEGRAM_CHAT_ID"`
}

// ShortSide is the target length of the shorter image side.
func (t Test) ShortSide() int {
	if len(t.ImageSize) == 0 {
		return 0
	}
	return t.ImageSize[0]
}

// Load reads the YAML file at path, then applies .env and environment overrides.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Device:   "cpu",
		LogLevel: "info",
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SEGMAP_DEVICE"); v != "" {
		cfg.Device = v
	}
	if v := os.Getenv("SEGMAP_SAVE_DIR"); v != "" {
		cfg.SaveDir = v
	}
	if v := os.Getenv("SEGMAP_MODEL_PATH"); v != "" {
		cfg.Test.ModelPath = v
	}
	cfg.OnnxRuntimeLib = os.Getenv("ONNXRUNTIME_LIB")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
}

// Validate reports every missing or invalid option at once.
func (c *Config) Validate() error {
	var errs []error
	if c.SaveDir == "" {
		errs = append(errs, errors.New("SAVE_DIR is required"))
	}
	if c.Model.Name == "" {
		errs = append(errs, errors.New("MODEL.NAME is required"))
	}
	if c.Dataset.Name == "" && c.Dataset.Palette == "" {
		errs = append(errs, errors.New("DATASET.NAME or DATASET.PALETTE is required"))
	}
	if c.Test.ModelPath == "" {
		errs = append(errs, errors.New("TEST.MODEL_PATH is required"))
	}
	if c.Test.File == "" {
		errs = append(errs, errors.New("TEST.FILE is required"))
	}
	if c.Test.ShortSide() <= 0 {
		errs = append(errs, fmt.Errorf("TEST.IMAGE_SIZE must start with a positive size, got %v", c.Test.ImageSize))
	}
	if c.Notify.TelegramChatID != 0 && c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_TOKEN is required when NOTIFY.TELEGRAM_CHAT_ID is set"))
	}
	return errors.Join(errs...)
}
