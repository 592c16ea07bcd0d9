package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)
	issuer.now = func() time.Time { return now }

	user := User{UID: "uid-1", Email: "u@x.com"}
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	got, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	issuer.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorContains(t, err, "expired")

	other := NewTokenIssuer([]byte("other"), time.Hour)
	other.now = func() time.Time { return now }
	_, err = other.Parse(token)
	assert.ErrorContains(t, err, "signature is invalid")
}
