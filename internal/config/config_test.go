package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juparave/aprxaudit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".aprx", cfg.ProjectSuffix)
	assert.Equal(t, []string{".backups", "archive", ".gdb"}, cfg.ExcludeSuffixes)
	assert.Equal(t, domain.VariantExtended, cfg.OutputVariant())
	assert.False(t, cfg.AllowMissingRoot)
	assert.Equal(t, domain.UnnamedLayer, cfg.MissingLayerName)
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `root_path: /srv/gis
variant: base
exclude_suffixes:
  - old
stamp_output: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/gis", cfg.RootPath)
	assert.Equal(t, domain.VariantBase, cfg.OutputVariant())
	assert.Equal(t, []string{"old"}, cfg.ExcludeSuffixes)
	assert.True(t, cfg.StampOutput)
	// untouched keys keep their defaults
	assert.Equal(t, ".aprx", cfg.ProjectSuffix)
	assert.Equal(t, "aprx_DataSource.csv", cfg.OutputPath)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variant: [unterminated"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidate(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing root", mutate: func(c *Config) { c.RootPath = "" }, wantErr: "root_path is required"},
		{name: "missing output", mutate: func(c *Config) { c.OutputPath = "" }, wantErr: "output_path is required"},
		{name: "root not found", mutate: func(c *Config) { c.RootPath = filepath.Join(root, "missing") }, wantErr: "does not exist"},
		{
			name: "root not found allowed",
			mutate: func(c *Config) {
				c.RootPath = filepath.Join(root, "missing")
				c.AllowMissingRoot = true
			},
		},
		{name: "bad variant", mutate: func(c *Config) { c.Variant = "wide" }, wantErr: "unknown variant"},
		{name: "empty suffix", mutate: func(c *Config) { c.ProjectSuffix = "" }, wantErr: "project_suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.RootPath = root
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
