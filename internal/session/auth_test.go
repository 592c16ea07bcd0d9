package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ncheta/ncheta/internal/auth"
	"github.com/ncheta/ncheta/internal/testutil"
)

func newTestAuthSession(t *testing.T) (*AuthSession, *auth.Service) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	service, err := auth.NewService(
		context.Background(),
		auth.NewUserRepository(db),
		auth.NewTokenIssuer([]byte("test-secret"), time.Hour),
		auth.Options{BcryptCost: bcrypt.MinCost},
	)
	require.NoError(t, err)

	s := NewAuthSession(context.Background(), service)
	t.Cleanup(s.Close)
	return s, service
}

func TestAuthSession_PasswordFlow(t *testing.T) {
	s, service := newTestAuthSession(t)
	assert.Equal(t, AuthIdle{}, s.State().Get())
	assert.False(t, s.SignedIn().Get())

	s.SignUp("student@example.com", "secret1")
	signedIn, ok := s.State().Get().(AuthSignedIn)
	require.True(t, ok, "state is %#v", s.State().Get())
	assert.Equal(t, "student@example.com", signedIn.User.Email)
	assert.True(t, s.SignedIn().Get())
	assert.Equal(t, &signedIn.User, service.CurrentUser())

	s.SignOut()
	assert.Equal(t, AuthIdle{}, s.State().Get())
	assert.False(t, s.SignedIn().Get())

	s.SignIn("student@example.com", "secret1")
	assert.Equal(t, AuthSignedIn{User: signedIn.User}, s.State().Get())
}

func TestAuthSession_Errors(t *testing.T) {
	tests := []struct {
		name        string
		action      func(s *AuthSession)
		wantMessage string
	}{
		{
			name: "invalid email",
			action: func(s *AuthSession) {
				s.SignUp("not-an-email", "secret1")
			},
			wantMessage: "email must be a valid email address",
		},
		{
			name: "short password",
			action: func(s *AuthSession) {
				s.SignUp("student@example.com", "123")
			},
			wantMessage: "password must be at least 6 characters in length",
		},
		{
			name: "unknown account",
			action: func(s *AuthSession) {
				s.SignIn("nobody@example.com", "secret1")
			},
			wantMessage: "invalid credentials",
		},
		{
			name: "blank google token",
			action: func(s *AuthSession) {
				s.SignInWithGoogle("")
			},
			wantMessage: "ID token cannot be empty.",
		},
		{
			name: "apple sign-in not configured",
			action: func(s *AuthSession) {
				s.SignInWithApple("token", "nonce")
			},
			wantMessage: "apple sign-in is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestAuthSession(t)
			tt.action(s)
			assert.Equal(t, AuthError{Message: tt.wantMessage}, s.State().Get())
			assert.False(t, s.SignedIn().Get())
		})
	}
}
