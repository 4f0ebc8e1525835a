package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/juparave/aprxaudit/internal/domain"
	"github.com/juparave/aprxaudit/internal/util"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	RootPath         string   `yaml:"root_path"`
	OutputPath       string   `yaml:"output_path"`
	Variant          string   `yaml:"variant"` // base, extended
	ProjectSuffix    string   `yaml:"project_suffix"`
	ExcludeSuffixes  []string `yaml:"exclude_suffixes"`
	AllowMissingRoot bool     `yaml:"allow_missing_root"`
	MissingLayerName string   `yaml:"missing_layer_name"`
	StampOutput      bool     `yaml:"stamp_output"`
	Verbose          bool     `yaml:"-"` // Set via CLI only
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputPath:       "aprx_DataSource.csv",
		Variant:          string(domain.VariantExtended),
		ProjectSuffix:    ".aprx",
		ExcludeSuffixes:  []string{".backups", "archive", ".gdb"},
		MissingLayerName: domain.UnnamedLayer,
	}
}

// DefaultPath returns the config file location used when none is given
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "aprxaudit", "config.yaml"), nil
}

// Load reads configuration from file and merges with defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil // Use defaults if can't find home
		}
		path = p
	}

	data, err := os.ReadFile(util.ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.RootPath = util.ExpandPath(cfg.RootPath)
	cfg.OutputPath = util.ExpandPath(cfg.OutputPath)

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.RootPath == "" {
		return fmt.Errorf("root_path is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output_path is required")
	}

	if !c.AllowMissingRoot && !util.DirExists(c.RootPath) {
		return fmt.Errorf("root_path does not exist: %s", c.RootPath)
	}

	if _, err := domain.ParseVariant(c.Variant); err != nil {
		return err
	}

	if c.ProjectSuffix == "" {
		return fmt.Errorf("project_suffix is required")
	}

	return nil
}

// OutputVariant returns the parsed output variant
func (c *Config) OutputVariant() domain.Variant {
	v, err := domain.ParseVariant(c.Variant)
	if err != nil {
		return domain.VariantExtended
	}
	return v
}
