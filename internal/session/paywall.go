package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/observable"
	"github.com/ncheta/ncheta/internal/subscription"
)

// Paywall is implemented by subscription.Manager.
type Paywall interface {
	Premium() observable.Observable[bool]
	Offerings(ctx context.Context) ([]subscription.Offering, error)
	Purchase(ctx context.Context, pkg subscription.Package, receiptToken string) (bool, error)
	Restore(ctx context.Context, receiptToken string) (bool, error)
}

var _ Paywall = (*subscription.Manager)(nil)

// PaywallUIState is one of PaywallLoading, PaywallReady or PaywallError.
type PaywallUIState interface {
	isPaywallUIState()
}

type PaywallLoading struct{}

type PaywallReady struct {
	Offerings []subscription.Offering
	IsPremium bool
}

type PaywallError struct {
	Message string
}

func (PaywallLoading) isPaywallUIState() {}
func (PaywallReady) isPaywallUIState()   {}
func (PaywallError) isPaywallUIState()   {}

type PaywallSession struct {
	paywall Paywall
	scope   *scope

	mu        sync.Mutex
	offerings []subscription.Offering
	state     *observable.Value[PaywallUIState]
}

func NewPaywallSession(ctx context.Context, paywall Paywall) *PaywallSession {
	return &PaywallSession{
		paywall: paywall,
		scope:   newScope(ctx),
		state:   observable.NewValue[PaywallUIState](PaywallLoading{}),
	}
}

func (s *PaywallSession) State() observable.Observable[PaywallUIState] {
	return s.state
}

func (s *PaywallSession) IsPremium() observable.Observable[bool] {
	return s.paywall.Premium()
}

func (s *PaywallSession) Close() {
	s.scope.close()
}

func (s *PaywallSession) setError(err error) {
	slog.Default().Error("paywall operation failed", "error", err)
	s.state.Set(PaywallError{Message: apperror.Message(err)})
}

func (s *PaywallSession) ready(isPremium bool) {
	s.state.Set(PaywallReady{Offerings: s.offerings, IsPremium: isPremium})
}

func (s *PaywallSession) LoadOfferings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Set(PaywallLoading{})

	s.scope.run(func(ctx context.Context) {
		offerings, err := s.paywall.Offerings(ctx)
		if err != nil {
			s.setError(err)
			return
		}
		s.offerings = offerings
		s.ready(s.paywall.Premium().Get())
	})
}

func (s *PaywallSession) Purchase(pkg subscription.Package, receiptToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Set(PaywallLoading{})

	s.scope.run(func(ctx context.Context) {
		isPremium, err := s.paywall.Purchase(ctx, pkg, receiptToken)
		if err != nil {
			s.setError(err)
			return
		}
		s.ready(isPremium)
	})
}

func (s *PaywallSession) Restore(receiptToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Set(PaywallLoading{})

	s.scope.run(func(ctx context.Context) {
		isPremium, err := s.paywall.Restore(ctx, receiptToken)
		if err != nil {
			s.setError(err)
			return
		}
		s.ready(isPremium)
	})
}
