package session

import (
	"strings"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/observable"
	"github.com/ncheta/ncheta/internal/settings"
)

// SettingsUIState is one of SettingsIdle, SettingsSaved or SettingsError.
type SettingsUIState interface {
	isSettingsUIState()
}

type SettingsIdle struct{}

type SettingsSaved struct{}

type SettingsError struct {
	Message string
}

func (SettingsIdle) isSettingsUIState()  {}
func (SettingsSaved) isSettingsUIState() {}
func (SettingsError) isSettingsUIState() {}

// SettingsSession edits the API key and the onboarding flag.
type SettingsSession struct {
	store settings.Store
	state *observable.Value[SettingsUIState]
}

func NewSettingsSession(store settings.Store) *SettingsSession {
	return &SettingsSession{
		store: store,
		state: observable.NewValue[SettingsUIState](SettingsIdle{}),
	}
}

func (s *SettingsSession) State() observable.Observable[SettingsUIState] {
	return s.state
}

func (s *SettingsSession) APIKey() observable.Observable[string] {
	return s.store.APIKey()
}

func (s *SettingsSession) OnboardingCompleted() observable.Observable[bool] {
	return s.store.OnboardingCompleted()
}

func (s *SettingsSession) SaveAPIKey(apiKey string) {
	if strings.TrimSpace(apiKey) == "" {
		s.state.Set(SettingsError{Message: "API key cannot be empty."})
		return
	}
	s.save(func() error { return s.store.SetAPIKey(apiKey) })
}

func (s *SettingsSession) ClearAPIKey() {
	s.save(func() error { return s.store.SetAPIKey("") })
}

func (s *SettingsSession) CompleteOnboarding() {
	s.save(func() error { return s.store.SetOnboardingCompleted(true) })
}

func (s *SettingsSession) save(fn func() error) {
	if err := fn(); err != nil {
		s.state.Set(SettingsError{Message: apperror.Message(err)})
		return
	}
	s.state.Set(SettingsSaved{})
}
