package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		wantOnboarding bool
		wantAPIKey     string
		wantErr        bool
	}{
		{
			name: "missing file uses defaults",
		},
		{
			name:           "reads existing values",
			content:        "onboarding_completed: true\napi_key: sk-123\n",
			wantOnboarding: true,
			wantAPIKey:     "sk-123",
		},
		{
			name:    "invalid yaml",
			content: "onboarding_completed: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yml")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			}

			got, err := NewFileStore(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOnboarding, got.OnboardingCompleted().Get())
			assert.Equal(t, tt.wantAPIKey, got.APIKey().Get())
		})
	}
}

func TestFileStore_Set(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yml")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.SetAPIKey("  sk-abc  "))
	require.NoError(t, store.SetOnboardingCompleted(true))

	assert.Equal(t, "sk-abc", store.APIKey().Get())
	assert.True(t, store.OnboardingCompleted().Get())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-abc", reopened.APIKey().Get())
	assert.True(t, reopened.OnboardingCompleted().Get())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestFileStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := store.APIKey().Subscribe(ctx)
	assert.Equal(t, "", <-updates)

	require.NoError(t, os.WriteFile(path, []byte("api_key: sk-external\n"), 0644))
	require.NoError(t, store.Reload())

	select {
	case got := <-updates:
		assert.Equal(t, "sk-external", got)
	case <-time.After(time.Second):
		t.Fatal("expected an update after reload")
	}
	assert.False(t, store.OnboardingCompleted().Get())
}

func TestFileStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx)
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("onboarding_completed: true\n"), 0644)
		return store.OnboardingCompleted().Get()
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
