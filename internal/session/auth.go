package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/auth"
	"github.com/ncheta/ncheta/internal/observable"
)

// Authenticator is implemented by auth.Service.
type Authenticator interface {
	SignedIn() observable.Observable[bool]
	User() observable.Observable[*auth.User]
	SignUp(ctx context.Context, email, password string) (auth.User, error)
	SignIn(ctx context.Context, email, password string) (auth.User, error)
	SignInWithGoogle(ctx context.Context, idToken string) (auth.User, error)
	SignInWithApple(ctx context.Context, idToken, rawNonce string) (auth.User, error)
	SignOut(ctx context.Context) error
}

var _ Authenticator = (*auth.Service)(nil)

// AuthUIState is one of AuthIdle, AuthLoading, AuthSignedIn or AuthError.
type AuthUIState interface {
	isAuthUIState()
}

type AuthIdle struct{}

type AuthLoading struct{}

type AuthSignedIn struct {
	User auth.User
}

type AuthError struct {
	Message string
}

func (AuthIdle) isAuthUIState()     {}
func (AuthLoading) isAuthUIState()  {}
func (AuthSignedIn) isAuthUIState() {}
func (AuthError) isAuthUIState()    {}

type AuthSession struct {
	auth  Authenticator
	scope *scope

	mu    sync.Mutex
	state *observable.Value[AuthUIState]
}

func NewAuthSession(ctx context.Context, authenticator Authenticator) *AuthSession {
	return &AuthSession{
		auth:  authenticator,
		scope: newScope(ctx),
		state: observable.NewValue[AuthUIState](AuthIdle{}),
	}
}

func (s *AuthSession) State() observable.Observable[AuthUIState] {
	return s.state
}

func (s *AuthSession) SignedIn() observable.Observable[bool] {
	return s.auth.SignedIn()
}

func (s *AuthSession) Close() {
	s.scope.close()
}

func (s *AuthSession) signIn(method string, fn func(ctx context.Context) (auth.User, error)) {
	s.mu.Lock()
	if _, busy := s.state.Get().(AuthLoading); busy {
		s.mu.Unlock()
		return
	}
	s.state.Set(AuthLoading{})
	s.mu.Unlock()

	s.scope.run(func(ctx context.Context) {
		user, err := fn(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			if !apperror.IsValidation(err) && !errors.Is(err, apperror.ErrUnauthorized) {
				slog.Default().Error("sign-in failed", "method", method, "error", err)
			}
			s.state.Set(AuthError{Message: apperror.Message(err)})
			return
		}
		s.state.Set(AuthSignedIn{User: user})
	})
}

func (s *AuthSession) SignUp(email, password string) {
	s.signIn("password sign-up", func(ctx context.Context) (auth.User, error) {
		return s.auth.SignUp(ctx, email, password)
	})
}

func (s *AuthSession) SignIn(email, password string) {
	s.signIn("password", func(ctx context.Context) (auth.User, error) {
		return s.auth.SignIn(ctx, email, password)
	})
}

func (s *AuthSession) SignInWithGoogle(idToken string) {
	s.signIn("google", func(ctx context.Context) (auth.User, error) {
		return s.auth.SignInWithGoogle(ctx, idToken)
	})
}

func (s *AuthSession) SignInWithApple(idToken, rawNonce string) {
	s.signIn("apple", func(ctx context.Context) (auth.User, error) {
		return s.auth.SignInWithApple(ctx, idToken, rawNonce)
	})
}

func (s *AuthSession) SignOut() {
	s.scope.run(func(ctx context.Context) {
		err := s.auth.SignOut(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.state.Set(AuthError{Message: apperror.Message(err)})
			return
		}
		s.state.Set(AuthIdle{})
	})
}
