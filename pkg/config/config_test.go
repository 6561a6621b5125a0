package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, LayoutColumnar, cfg.Layout)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarry.yaml")
	content := "workers: 3\nlayout: compact\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, LayoutCompact, cfg.Layout)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset keys keep defaults.
	assert.Equal(t, "csv", cfg.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"bad layout", func(c *Config) { c.Layout = "btree" }, true},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
		{"linked layout", func(c *Config) { c.Layout = LayoutLinked }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
