package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFeatureConfig(t *testing.T) {
	cfg := DefaultFeatureConfig()
	require.NoError(t, cfg.resolve())

	assert.Equal(t, "Europe/Paris", cfg.Reservation.Timezone)
	assert.Equal(t, 2*time.Hour, cfg.Duration())
	assert.Equal(t, time.Hour, cfg.Grace())
	assert.Equal(t, 6*time.Hour, cfg.SweepInterval())
	assert.Equal(t, "fish", cfg.Reservation.DefaultPassword)
	assert.Equal(t, "fishrcon", cfg.Reservation.DefaultRCON)
	assert.NotEmpty(t, cfg.Maps.Available)
}

func TestLoadFeatureConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFeatureConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", cfg.Location().String())
}

func TestLoadFeatureConfig_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servebot.toml")
	content := `
[reservation]
timezone = "Europe/Berlin"
default_password = "carp"

[maps]
available = ["cp_process_f12", "koth_product_final"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFeatureConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
	assert.Equal(t, "carp", cfg.Reservation.DefaultPassword)
	assert.Equal(t, []string{"cp_process_f12", "koth_product_final"}, cfg.Maps.Available)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 2*time.Hour, cfg.Duration())
}

func TestLoadFeatureConfig_InvalidTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servebot.toml")
	require.NoError(t, os.WriteFile(path, []byte("[reservation]\ntimezone = \"Mars/Olympus\"\n"), 0o644))

	_, err := LoadFeatureConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestConfigFileForMap(t *testing.T) {
	cfg := DefaultFeatureConfig()

	tests := []struct {
		mapName string
		want    string
	}{
		{"cp_process_f12", "etf2l_6v6_5cp"},
		{"cp_sunshine", "etf2l_6v6_5cp"},
		{"koth_bagel_rc10", "etf2l_6v6_koth"},
		{"koth_product_final", "etf2l_6v6_koth"},
		{"pl_upward", "etf2l_6v6_koth"},
		{"cp", "etf2l_6v6_koth"},
	}
	for _, tt := range tests {
		t.Run(tt.mapName, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.ConfigFileForMap(tt.mapName))
		})
	}
}
