package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "ncheta", cmd.Use)
	for _, name := range []string{"generate", "list", "practice", "delete", "sync", "export", "backup", "auth", "settings", "paywall", "show"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("empty path", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(""))
	})

	t.Run("sets unset variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("NCHETA_TEST_ENV_VALUE=from-file\n"), 0644))
		t.Setenv("NCHETA_TEST_ENV_VALUE", "")
		require.NoError(t, os.Unsetenv("NCHETA_TEST_ENV_VALUE"))

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "from-file", os.Getenv("NCHETA_TEST_ENV_VALUE"))
	})
}

func TestAudioMimeType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "talk.m4a", want: "audio/mp4"},
		{path: "talk.MP3", want: "audio/mpeg"},
		{path: "talk.wav", want: "audio/wav"},
		{path: "talk.unknown-ext", want: "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, audioMimeType(tt.path))
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "(not set)", maskAPIKey(""))
	assert.Equal(t, "***", maskAPIKey("abc"))
	assert.Equal(t, "****5678", maskAPIKey("abcd5678"))
}
