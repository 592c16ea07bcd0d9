// Package subscription tracks the premium entitlement that gates cloud sync.
package subscription

import (
	"context"
	"time"
)

// Package is one purchasable product inside an offering.
type Package struct {
	Identifier string `json:"identifier"`
	ProductID  string `json:"productId"`
}

type Offering struct {
	Identifier  string    `json:"identifier"`
	Description string    `json:"description"`
	Current     bool      `json:"current"`
	Packages    []Package `json:"packages"`
}

type Entitlement struct {
	ProductID string `json:"productId"`
	// ExpiresAt is nil for lifetime entitlements.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type CustomerInfo struct {
	AppUserID    string                 `json:"appUserId"`
	Entitlements map[string]Entitlement `json:"entitlements"`
}

// IsActive reports whether the named entitlement exists and has not expired at now.
func (c CustomerInfo) IsActive(entitlement string, now time.Time) bool {
	e, ok := c.Entitlements[entitlement]
	if !ok {
		return false
	}
	return e.ExpiresAt == nil || e.ExpiresAt.After(now)
}

//go:generate mockgen -source=subscription.go -destination=../mocks/subscription/mock_client.go -package=mock_subscription

// Client talks to the purchases backend.
type Client interface {
	GetCustomerInfo(ctx context.Context, appUserID string) (CustomerInfo, error)
	GetOfferings(ctx context.Context, appUserID string) ([]Offering, error)
	// Purchase records a store purchase identified by its receipt token.
	Purchase(ctx context.Context, appUserID string, pkg Package, receiptToken string) (CustomerInfo, error)
	// Restore re-associates earlier purchases; an empty receiptToken only refreshes.
	Restore(ctx context.Context, appUserID, receiptToken string) (CustomerInfo, error)
}
