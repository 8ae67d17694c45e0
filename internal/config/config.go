package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "SOSURVEY"

// Config represents the complete application configuration
type Config struct {
	Survey  SurveyConfig  `yaml:"survey" toml:"survey" envconfig:"SURVEY"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" envconfig:"LOGGING"`
	Report  ReportConfig  `yaml:"report" toml:"report" envconfig:"REPORT"`
}

// SurveyConfig describes where survey archives are found and how they are decoded
type SurveyConfig struct {
	LookupPath    string   `yaml:"lookup_path" toml:"lookup_path" envconfig:"LOOKUP_PATH" validate:"required"`
	BaseDir       string   `yaml:"base_dir" toml:"base_dir" envconfig:"BASE_DIR"`
	Encoding      string   `yaml:"encoding" toml:"encoding" envconfig:"ENCODING" validate:"required"`
	Separator     string   `yaml:"separator" toml:"separator" envconfig:"SEPARATOR"`
	MissingValues []string `yaml:"missing_values" toml:"missing_values" envconfig:"MISSING_VALUES"`
	// CacheTTL keeps parsed years in memory, e.g. "10m". Zero disables it.
	CacheTTL time.Duration `yaml:"cache_ttl" toml:"cache_ttl" envconfig:"CACHE_TTL" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" toml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" toml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" toml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" toml:"file_path" envconfig:"FILE_PATH"`
	// Name selects a named text logger ("default" or "stdout") when Format is text.
	Name    string `yaml:"name" toml:"name" envconfig:"NAME"`
	Verbose bool   `yaml:"verbose" toml:"verbose" envconfig:"VERBOSE"`
}

// ReportConfig contains chart rendering configuration
type ReportConfig struct {
	OutDir        string  `yaml:"out_dir" toml:"out_dir" envconfig:"OUT_DIR" validate:"required"`
	Format        string  `yaml:"format" toml:"format" envconfig:"FORMAT" validate:"oneof=png svg"`
	LabelRotation float64 `yaml:"label_rotation" toml:"label_rotation" envconfig:"LABEL_ROTATION" validate:"gte=-360,lte=360"`
	LabelSize     int     `yaml:"label_size" toml:"label_size" envconfig:"LABEL_SIZE" validate:"gt=0"`
	TitleSize     int     `yaml:"title_size" toml:"title_size" envconfig:"TITLE_SIZE" validate:"gt=0"`
	Width         int     `yaml:"width" toml:"width" envconfig:"WIDTH" validate:"gt=0"`
	Height        int     `yaml:"height" toml:"height" envconfig:"HEIGHT" validate:"gt=0"`
}

// Load builds the configuration from defaults, an optional YAML or TOML file and
// SOSURVEY_* environment variables, in increasing order of precedence.
// An empty configFile searches the usual locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep their file or default value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML or TOML document at filePath onto cfg,
// chosen by file extension.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(filePath), ".toml") {
		_, err = toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalizes a few values
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Report.Format = strings.ToLower(c.Report.Format)

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"config.toml",
		"configs/config.yaml",
		"configs/config.toml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Survey: SurveyConfig{
			LookupPath:    DefaultLookupPath,
			Encoding:      DefaultEncoding,
			Separator:     DefaultSeparator,
			MissingValues: append([]string(nil), DefaultMissingValues...),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "both",
			FilePath: DefaultLogFile,
			Name:     "default",
			Verbose:  true,
		},
		Report: ReportConfig{
			OutDir:    DefaultReportsDir,
			Format:    "png",
			LabelSize: 14,
			TitleSize: 18,
			Width:     1200,
			Height:    600,
		},
	}
}
