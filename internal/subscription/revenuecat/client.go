// Package revenuecat implements subscription.Client over the RevenueCat REST API (v1).
package revenuecat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/ncheta/ncheta/internal/subscription"
)

type Config struct {
	BaseURL          string
	APIKey           string
	Platform         string
	MaxRetryAttempts uint
}

type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

var _ subscription.Client = (*Client)(nil)

func NewClient(cfg Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30*time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Platform", cfg.Platform)
	return &Client{
		httpClient:       client,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

type subscriberResponse struct {
	Subscriber struct {
		OriginalAppUserID string `json:"original_app_user_id"`
		Entitlements      map[string]struct {
			ExpiresDate       *time.Time `json:"expires_date"`
			ProductIdentifier string     `json:"product_identifier"`
		} `json:"entitlements"`
	} `json:"subscriber"`
}

func (r subscriberResponse) customerInfo(appUserID string) subscription.CustomerInfo {
	info := subscription.CustomerInfo{
		AppUserID:    appUserID,
		Entitlements: make(map[string]subscription.Entitlement, len(r.Subscriber.Entitlements)),
	}
	for name, e := range r.Subscriber.Entitlements {
		info.Entitlements[name] = subscription.Entitlement{
			ProductID: e.ProductIdentifier,
			ExpiresAt: e.ExpiresDate,
		}
	}
	return info
}

type offeringsResponse struct {
	CurrentOfferingID string `json:"current_offering_id"`
	Offerings         []struct {
		Identifier  string `json:"identifier"`
		Description string `json:"description"`
		Packages    []struct {
			Identifier                string `json:"identifier"`
			PlatformProductIdentifier string `json:"platform_product_identifier"`
		} `json:"packages"`
	} `json:"offerings"`
}

type receiptRequest struct {
	AppUserID  string `json:"app_user_id"`
	FetchToken string `json:"fetch_token"`
	ProductID  string `json:"product_id,omitempty"`
	IsRestore  bool   `json:"is_restore,omitempty"`
}

// statusError is returned for non-2xx responses.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status code: %d, body: %s", e.StatusCode, e.Body)
}

func isRetryableError(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError || se.StatusCode == http.StatusTooManyRequests
	}
	return err != nil
}

func (client *Client) do(ctx context.Context, op string, fn func() (*resty.Response, error)) error {
	return retry.Do(
		func() error {
			res, err := fn()
			if err != nil {
				return fmt.Errorf("client.R > %w", err)
			}
			if res.IsError() {
				err := &statusError{StatusCode: res.StatusCode(), Body: res.String()}
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Debug("retrying revenuecat request", "operation", op, "attempt", n+1, "error", err)
		}),
	)
}

func (client *Client) GetCustomerInfo(ctx context.Context, appUserID string) (subscription.CustomerInfo, error) {
	var body subscriberResponse
	if err := client.do(ctx, "get subscriber", func() (*resty.Response, error) {
		return client.httpClient.R().
			SetContext(ctx).
			SetPathParam("appUserID", appUserID).
			SetResult(&body).
			Get("/subscribers/{appUserID}")
	}); err != nil {
		return subscription.CustomerInfo{}, fmt.Errorf("GET /subscribers/%s > %w", appUserID, err)
	}
	return body.customerInfo(appUserID), nil
}

func (client *Client) GetOfferings(ctx context.Context, appUserID string) ([]subscription.Offering, error) {
	var body offeringsResponse
	if err := client.do(ctx, "get offerings", func() (*resty.Response, error) {
		return client.httpClient.R().
			SetContext(ctx).
			SetPathParam("appUserID", appUserID).
			SetResult(&body).
			Get("/subscribers/{appUserID}/offerings")
	}); err != nil {
		return nil, fmt.Errorf("GET /subscribers/%s/offerings > %w", appUserID, err)
	}

	offerings := make([]subscription.Offering, 0, len(body.Offerings))
	for _, o := range body.Offerings {
		offering := subscription.Offering{
			Identifier:  o.Identifier,
			Description: o.Description,
			Current:     o.Identifier == body.CurrentOfferingID,
			Packages:    make([]subscription.Package, 0, len(o.Packages)),
		}
		for _, p := range o.Packages {
			offering.Packages = append(offering.Packages, subscription.Package{
				Identifier: p.Identifier,
				ProductID:  p.PlatformProductIdentifier,
			})
		}
		offerings = append(offerings, offering)
	}
	return offerings, nil
}

func (client *Client) postReceipt(ctx context.Context, req receiptRequest) (subscription.CustomerInfo, error) {
	var body subscriberResponse
	if err := client.do(ctx, "post receipt", func() (*resty.Response, error) {
		return client.httpClient.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&body).
			Post("/receipts")
	}); err != nil {
		return subscription.CustomerInfo{}, fmt.Errorf("POST /receipts > %w", err)
	}
	return body.customerInfo(req.AppUserID), nil
}

func (client *Client) Purchase(ctx context.Context, appUserID string, pkg subscription.Package, receiptToken string) (subscription.CustomerInfo, error) {
	return client.postReceipt(ctx, receiptRequest{
		AppUserID:  appUserID,
		FetchToken: receiptToken,
		ProductID:  pkg.ProductID,
	})
}

func (client *Client) Restore(ctx context.Context, appUserID, receiptToken string) (subscription.CustomerInfo, error) {
	if receiptToken == "" {
		return client.GetCustomerInfo(ctx, appUserID)
	}
	return client.postReceipt(ctx, receiptRequest{
		AppUserID:  appUserID,
		FetchToken: receiptToken,
		IsRestore:  true,
	})
}
