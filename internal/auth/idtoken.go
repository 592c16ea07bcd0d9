package auth

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"resty.dev/v3"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/config"
)

// IdentityClaims are the verified claims of a federated ID token.
type IdentityClaims struct {
	Subject string
	Email   string
}

// IDTokenVerifier verifies an ID token issued by a federated identity provider.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawToken, rawNonce string) (IdentityClaims, error)
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Nonce string `json:"nonce"`
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jsonWebKeySet struct {
	Keys []jsonWebKey `json:"keys"`
}

// JWKSVerifier checks RS256 ID tokens against the provider's published key set.
// Keys are cached and refetched when a token names an unknown key id.
type JWKSVerifier struct {
	httpClient   *resty.Client
	jwksURL      string
	audience     string
	issuers      []string
	requireNonce bool
	cacheTTL     time.Duration
	now          func() time.Time

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

var _ IDTokenVerifier = (*JWKSVerifier)(nil)

// NewJWKSVerifier creates a verifier for one provider. When requireNonce is
// set, tokens must carry nonce = hex(sha256(rawNonce)).
func NewJWKSVerifier(cfg config.IdentityProviderConfig, requireNonce bool) *JWKSVerifier {
	return &JWKSVerifier{
		httpClient:   resty.New().SetTimeout(10 * time.Second),
		jwksURL:      cfg.JWKSURL,
		audience:     cfg.ClientID,
		issuers:      cfg.Issuers,
		requireNonce: requireNonce,
		cacheTTL:     time.Hour,
		now:          time.Now,
		keys:         make(map[string]*rsa.PublicKey),
	}
}

func (v *JWKSVerifier) Verify(ctx context.Context, rawToken, rawNonce string) (IdentityClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &idTokenClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.key(ctx, kid)
	}, opts...)
	if err != nil {
		return IdentityClaims{}, fmt.Errorf("%w: %v", apperror.ErrUnauthorized, err)
	}

	if len(v.issuers) > 0 && !slices.Contains(v.issuers, claims.Issuer) {
		return IdentityClaims{}, fmt.Errorf("%w: unexpected issuer %q", apperror.ErrUnauthorized, claims.Issuer)
	}
	if v.requireNonce || rawNonce != "" {
		sum := sha256.Sum256([]byte(rawNonce))
		if claims.Nonce != hex.EncodeToString(sum[:]) {
			return IdentityClaims{}, fmt.Errorf("%w: nonce mismatch", apperror.ErrUnauthorized)
		}
	}
	if claims.Email == "" {
		return IdentityClaims{}, fmt.Errorf("%w: token has no email", apperror.ErrUnauthorized)
	}

	return IdentityClaims{Subject: claims.Subject, Email: claims.Email}, nil
}

func (v *JWKSVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if key, ok := v.keys[kid]; ok && v.now().Sub(v.fetchedAt) < v.cacheTTL {
		return key, nil
	}
	if err := v.refreshLocked(ctx); err != nil {
		return nil, err
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

func (v *JWKSVerifier) refreshLocked(ctx context.Context) error {
	response, err := v.httpClient.R().
		SetContext(ctx).
		SetResult(&jsonWebKeySet{}).
		Get(v.jwksURL)
	if err != nil {
		return apperror.NewRemote("fetch jwks", fmt.Errorf("httpClient.Get(%s) > %w", v.jwksURL, err))
	}
	if response.IsError() {
		return apperror.NewRemote("fetch jwks", fmt.Errorf("jwks response error %d: %s", response.StatusCode(), response.String()))
	}

	set := response.Result().(*jsonWebKeySet)
	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		key, err := jwk.rsaPublicKey()
		if err != nil {
			return fmt.Errorf("key %s > %w", jwk.Kid, err)
		}
		keys[jwk.Kid] = key
	}
	v.keys = keys
	v.fetchedAt = v.now()
	return nil
}

func (k jsonWebKey) rsaPublicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus > %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent > %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}
