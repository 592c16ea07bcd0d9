// Package auth manages the signed-in identity: password accounts, federated
// Google and Apple sign-in, and the persisted session.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/observable"
)

// User is the signed-in identity.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Identity exposes the current user, or nil when signed out.
type Identity interface {
	CurrentUser() *User
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type Options struct {
	BcryptCost int
	Google     IDTokenVerifier
	Apple      IDTokenVerifier
}

type Service struct {
	users      *UserRepository
	tokens     *TokenIssuer
	google     IDTokenVerifier
	apple      IDTokenVerifier
	bcryptCost int
	now        func() time.Time

	validate   *validator.Validate
	translator ut.Translator

	// mu keeps current and signedIn consistent with each other.
	mu       sync.Mutex
	current  *observable.Value[*User]
	signedIn *observable.Value[bool]
}

var _ Identity = (*Service)(nil)

// NewService restores the persisted session, if any, and returns the service.
func NewService(ctx context.Context, users *UserRepository, tokens *TokenIssuer, opts Options) (*Service, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	s := &Service{
		users:      users,
		tokens:     tokens,
		google:     opts.Google,
		apple:      opts.Apple,
		bcryptCost: cost,
		now:        time.Now,
		validate:   validate,
		translator: trans,
		current:    observable.NewValue[*User](nil),
		signedIn:   observable.NewValue(false),
	}
	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return validate, trans, nil
}

func (s *Service) restore(ctx context.Context) error {
	token, err := s.users.LoadSession(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	user, err := s.tokens.Parse(token)
	if err != nil {
		slog.Default().Warn("discarding stored session", "error", err)
		return s.users.DeleteSession(ctx)
	}
	s.setCurrent(&user)
	slog.Default().Debug("restored session", "uid", user.UID)
	return nil
}

func (s *Service) CurrentUser() *User {
	return s.current.Get()
}

// SignedIn publishes whether a user is signed in.
func (s *Service) SignedIn() observable.Observable[bool] {
	return s.signedIn
}

// User publishes the current user, nil when signed out.
func (s *Service) User() observable.Observable[*User] {
	return s.current
}

func (s *Service) setCurrent(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Set(user)
	s.signedIn.Set(user != nil)
}

func (s *Service) validateCredentials(email, password string) (credentials, error) {
	c := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := s.validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return c, fmt.Errorf("validate.Struct() > %w", err)
		}
		fe := validationErrors[0]
		return c, apperror.NewValidation(fe.Field(), "%s", fe.Translate(s.translator))
	}
	c.Email = strings.ToLower(c.Email)
	return c, nil
}

// SignUp creates a password account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (User, error) {
	c, err := s.validateCredentials(email, password)
	if err != nil {
		return User{}, err
	}

	existing, err := s.users.FindByEmail(ctx, c.Email)
	if err != nil {
		return User{}, err
	}
	if existing != nil {
		return User{}, apperror.NewValidation("email", "An account already exists for %s.", c.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("bcrypt.GenerateFromPassword() > %w", err)
	}
	record := userRecord{
		UID:          uuid.NewString(),
		Email:        c.Email,
		PasswordHash: sql.NullString{String: string(hash), Valid: true},
		Provider:     ProviderPassword,
		CreatedAt:    s.now().UnixMilli(),
	}
	if err := s.users.Create(ctx, record); err != nil {
		return User{}, err
	}
	return s.startSession(ctx, User{UID: record.UID, Email: record.Email})
}

// SignIn signs in a password account.
func (s *Service) SignIn(ctx context.Context, email, password string) (User, error) {
	c, err := s.validateCredentials(email, password)
	if err != nil {
		return User{}, err
	}

	record, err := s.users.FindByEmail(ctx, c.Email)
	if err != nil {
		return User{}, err
	}
	if record == nil || !record.PasswordHash.Valid {
		return User{}, apperror.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash.String), []byte(c.Password)); err != nil {
		return User{}, apperror.ErrUnauthorized
	}
	return s.startSession(ctx, User{UID: record.UID, Email: record.Email})
}

// SignInWithGoogle signs in with a Google ID token.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (User, error) {
	return s.signInFederated(ctx, ProviderGoogle, s.google, idToken, "")
}

// SignInWithApple signs in with an Apple ID token and the raw nonce the
// authorization request was made with.
func (s *Service) SignInWithApple(ctx context.Context, idToken, rawNonce string) (User, error) {
	return s.signInFederated(ctx, ProviderApple, s.apple, idToken, rawNonce)
}

func (s *Service) signInFederated(ctx context.Context, provider Provider, verifier IDTokenVerifier, idToken, rawNonce string) (User, error) {
	if strings.TrimSpace(idToken) == "" {
		return User{}, apperror.NewValidation("idToken", "ID token cannot be empty.")
	}
	if verifier == nil {
		return User{}, fmt.Errorf("%s sign-in is not configured", provider)
	}

	claims, err := verifier.Verify(ctx, idToken, rawNonce)
	if err != nil {
		return User{}, err
	}
	email := strings.ToLower(claims.Email)

	record, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if record == nil {
		record = &userRecord{
			UID:       uuid.NewString(),
			Email:     email,
			Provider:  provider,
			CreatedAt: s.now().UnixMilli(),
		}
		if err := s.users.Create(ctx, *record); err != nil {
			return User{}, err
		}
		slog.Default().Info("created federated account", "provider", provider, "uid", record.UID)
	}
	return s.startSession(ctx, User{UID: record.UID, Email: record.Email})
}

func (s *Service) startSession(ctx context.Context, user User) (User, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return User{}, err
	}
	if err := s.users.SaveSession(ctx, token, s.now().UnixMilli()); err != nil {
		return User{}, err
	}
	s.setCurrent(&user)
	slog.Default().Info("signed in", "uid", user.UID)
	return user, nil
}

// SignOut clears the persisted session.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.users.DeleteSession(ctx); err != nil {
		return err
	}
	s.setCurrent(nil)
	return nil
}
