package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/auth"
	"github.com/ncheta/ncheta/internal/observable"
)

// Manager exposes the premium flag of the signed-in user.
// A nil Client means purchases are disabled and the user is never premium.
type Manager struct {
	client      Client
	identity    auth.Identity
	entitlement string
	now         func() time.Time

	premium *observable.Value[bool]
}

func NewManager(client Client, identity auth.Identity, entitlement string) *Manager {
	return &Manager{
		client:      client,
		identity:    identity,
		entitlement: entitlement,
		now:         time.Now,
		premium:     observable.NewValue(false),
	}
}

func (m *Manager) Premium() observable.Observable[bool] {
	return m.premium
}

// IsPremium returns the last known entitlement state.
func (m *Manager) IsPremium() bool {
	return m.premium.Get()
}

func (m *Manager) appUserID() (string, error) {
	user := m.identity.CurrentUser()
	if user == nil {
		return "", apperror.ErrNotSignedIn
	}
	return user.UID, nil
}

func (m *Manager) apply(info CustomerInfo) bool {
	active := info.IsActive(m.entitlement, m.now())
	m.premium.Set(active)
	return active
}

// Refresh reloads the entitlement from the backend. Signed-out users are not premium.
func (m *Manager) Refresh(ctx context.Context) (bool, error) {
	if m.client == nil {
		return false, nil
	}
	appUserID, err := m.appUserID()
	if err != nil {
		m.premium.Set(false)
		return false, nil
	}
	info, err := m.client.GetCustomerInfo(ctx, appUserID)
	if err != nil {
		return m.premium.Get(), apperror.NewRemote("get customer info", err)
	}
	return m.apply(info), nil
}

func (m *Manager) Offerings(ctx context.Context) ([]Offering, error) {
	if m.client == nil {
		return []Offering{}, nil
	}
	appUserID, err := m.appUserID()
	if err != nil {
		return nil, err
	}
	offerings, err := m.client.GetOfferings(ctx, appUserID)
	if err != nil {
		return nil, apperror.NewRemote("get offerings", err)
	}
	return offerings, nil
}

func (m *Manager) Purchase(ctx context.Context, pkg Package, receiptToken string) (bool, error) {
	if m.client == nil {
		return false, apperror.NewValidation("package", "Purchases are not available.")
	}
	if receiptToken == "" {
		return false, apperror.NewValidation("receiptToken", "A purchase receipt is required.")
	}
	appUserID, err := m.appUserID()
	if err != nil {
		return false, err
	}
	info, err := m.client.Purchase(ctx, appUserID, pkg, receiptToken)
	if err != nil {
		return false, apperror.NewRemote("purchase", err)
	}
	return m.apply(info), nil
}

func (m *Manager) Restore(ctx context.Context, receiptToken string) (bool, error) {
	if m.client == nil {
		return false, nil
	}
	appUserID, err := m.appUserID()
	if err != nil {
		return false, err
	}
	info, err := m.client.Restore(ctx, appUserID, receiptToken)
	if err != nil {
		return false, apperror.NewRemote("restore purchases", err)
	}
	return m.apply(info), nil
}

// Follow refreshes the entitlement every time users emits, until ctx is done.
func (m *Manager) Follow(ctx context.Context, users observable.Observable[*auth.User]) error {
	for range users.Subscribe(ctx) {
		if _, err := m.Refresh(ctx); err != nil {
			slog.Default().Warn("failed to refresh premium entitlement", "error", err)
		}
	}
	return nil
}
