package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultMaxBooks, cfg.MaxBooks)
	assert.True(t, cfg.Resolver.TitlePrecedence)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen_addr: "0.0.0.0:8080"
max_books: 5
db:
  path: /tmp/custom.db
resolver:
  title_precedence: false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.MaxBooks)
	assert.Equal(t, "/tmp/custom.db", cfg.DB.Path)
	assert.False(t, cfg.Resolver.TitlePrecedence)

	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultRentDays, cfg.RentDays)
	assert.Equal(t, DefaultDisplayLimit, cfg.DisplayLimit)
	assert.Equal(t, DefaultMaxConns, cfg.DB.MaxConns)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero max_books", "max_books: 0"},
		{"negative rent_days", "rent_days: -1"},
		{"zero display_limit", "display_limit: 0"},
		{"malformed yaml", "max_books: [not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
