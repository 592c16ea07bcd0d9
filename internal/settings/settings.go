// Package settings persists user preferences (onboarding flag and API key) in a YAML file.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/ncheta/ncheta/internal/observable"
)

// Store is the key-value preference store used by sessions.
type Store interface {
	OnboardingCompleted() observable.Observable[bool]
	APIKey() observable.Observable[string]
	SetOnboardingCompleted(completed bool) error
	SetAPIKey(apiKey string) error
}

type fileContent struct {
	OnboardingCompleted bool   `yaml:"onboarding_completed"`
	APIKey              string `yaml:"api_key,omitempty"`
}

// FileStore keeps settings in a single YAML file and mirrors them in observable values.
type FileStore struct {
	path string

	mu                  sync.Mutex
	onboardingCompleted *observable.Value[bool]
	apiKey              *observable.Value[string]
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads path. A missing file yields default settings.
func NewFileStore(path string) (*FileStore, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{
		path:                path,
		onboardingCompleted: observable.NewValue(content.OnboardingCompleted),
		apiKey:              observable.NewValue(content.APIKey),
	}, nil
}

func readFile(path string) (fileContent, error) {
	var content fileContent
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return content, nil
	}
	if err != nil {
		return content, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	if err := yaml.Unmarshal(data, &content); err != nil {
		return content, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	return content, nil
}

func (s *FileStore) OnboardingCompleted() observable.Observable[bool] {
	return s.onboardingCompleted
}

func (s *FileStore) APIKey() observable.Observable[string] {
	return s.apiKey
}

func (s *FileStore) SetOnboardingCompleted(completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := s.snapshotLocked()
	content.OnboardingCompleted = completed
	if err := s.writeLocked(content); err != nil {
		return err
	}
	s.onboardingCompleted.Set(completed)
	return nil
}

func (s *FileStore) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	content := s.snapshotLocked()
	content.APIKey = apiKey
	if err := s.writeLocked(content); err != nil {
		return err
	}
	s.apiKey.Set(apiKey)
	return nil
}

func (s *FileStore) snapshotLocked() fileContent {
	return fileContent{
		OnboardingCompleted: s.onboardingCompleted.Get(),
		APIKey:              s.apiKey.Get(),
	}
}

// writeLocked replaces the file through a rename so readers never see a partial document.
func (s *FileStore) writeLocked(content fileContent) error {
	data, err := yaml.Marshal(content)
	if err != nil {
		return fmt.Errorf("yaml.Marshal() > %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yml")
	if err != nil {
		return fmt.Errorf("os.CreateTemp(%s) > %w", dir, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Write() > %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Chmod() > %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close() > %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", s.path, err)
	}
	return nil
}

// Reload re-reads the file and publishes values that changed.
func (s *FileStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := readFile(s.path)
	if err != nil {
		return err
	}
	if content.OnboardingCompleted != s.onboardingCompleted.Get() {
		s.onboardingCompleted.Set(content.OnboardingCompleted)
	}
	if content.APIKey != s.apiKey.Get() {
		s.apiKey.Set(content.APIKey)
	}
	return nil
}

// Watch reloads the settings whenever the file changes on disk, until ctx is done.
// The parent directory is watched because writes replace the file.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher() > %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watcher.Add(%s) > %w", dir, err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				slog.Default().Warn("failed to reload settings", "path", s.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Default().Warn("settings watcher error", "error", err)
		}
	}
}
