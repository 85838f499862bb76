package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Base valid environment
	validEnv := map[string]string{
		"DISCORD_BOT_TOKEN": "token-123",
		"SERVEME_API_KEY":   "key-456",
	}

	t.Run("valid config", func(t *testing.T) {
		for k, v := range validEnv {
			t.Setenv(k, v)
		}
		t.Setenv("SERVEME_BASE_URL", "")
		t.Setenv("STATUS_ADDR", ":8080")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "token-123", cfg.DiscordToken)
		assert.Equal(t, "key-456", cfg.ServemeAPIKey)
		assert.Equal(t, defaultServemeBaseURL, cfg.ServemeBaseURL)
		assert.Equal(t, ":8080", cfg.StatusAddr)
	})

	t.Run("base url override", func(t *testing.T) {
		for k, v := range validEnv {
			t.Setenv(k, v)
		}
		t.Setenv("SERVEME_BASE_URL", "https://na.serveme.tf/api/reservations")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://na.serveme.tf/api/reservations", cfg.ServemeBaseURL)
	})

	// Table-driven test for missing variables
	missingVarTests := []struct {
		name    string
		unset   string // The env var to leave unset
		wantErr string
	}{
		{
			name:    "missing DISCORD_BOT_TOKEN",
			unset:   "DISCORD_BOT_TOKEN",
			wantErr: "DISCORD_BOT_TOKEN is required",
		},
		{
			name:    "missing SERVEME_API_KEY",
			unset:   "SERVEME_API_KEY",
			wantErr: "SERVEME_API_KEY is required",
		},
	}

	for _, tt := range missingVarTests {
		t.Run(tt.name, func(t *testing.T) {
			// Set all valid envs first
			for k, v := range validEnv {
				t.Setenv(k, v)
			}
			// Then unset the one for this test case
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithFile_RealEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := dir + "/.env"
	content := "DISCORD_BOT_TOKEN=filetoken\nSERVEME_API_KEY=filekey\nDB_PATH=/tmp/servebot.db\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	// godotenv.Load does NOT overwrite existing env vars, so we must unset them.
	for _, key := range []string{"DISCORD_BOT_TOKEN", "SERVEME_API_KEY", "DB_PATH"} {
		t.Setenv(key, "") // save original for cleanup
		_ = os.Unsetenv(key)
	}

	cfg, err := LoadWithFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "filetoken", cfg.DiscordToken)
	assert.Equal(t, "filekey", cfg.ServemeAPIKey)
	assert.Equal(t, "/tmp/servebot.db", cfg.DBPath)
}

func TestLoadWithFile_NonExistentFile(t *testing.T) {
	// Should not fail - just proceeds with env vars
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("SERVEME_API_KEY", "key")

	cfg, err := LoadWithFile("/nonexistent/.env")
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.DiscordToken)
}

func TestValidate_AllFieldsSet(t *testing.T) {
	cfg := &Config{
		DiscordToken:   "t",
		ServemeAPIKey:  "k",
		ServemeBaseURL: defaultServemeBaseURL,
	}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingToken(t *testing.T) {
	cfg := &Config{ServemeAPIKey: "k", ServemeBaseURL: "u"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_BOT_TOKEN is required")
}
