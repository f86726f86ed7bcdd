package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/models"
)

// DefaultTTL is the validity window of an issued session token.
const DefaultTTL = 2 * time.Hour

// UserFinder is the part of the credential store the issuer needs.
// Both lookups return (nil, nil) when the user does not exist.
type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Issuer authenticates users and signs/verifies HS256 session tokens.
type Issuer struct {
	users  UserFinder
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithClock injects the source of "now".
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer creates an issuer signing with secret.
func NewIssuer(users UserFinder, secret []byte, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: session secret is empty")
	}
	i := &Issuer{users: users, secret: secret, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// sessionClaims is the token payload. It is tamper-evident, not confidential.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Authenticate checks email/password against the credential store and issues
// a session valid for the issuer's TTL.
func (i *Issuer) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := i.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	if !CheckPassword(user.Password, password) {
		return nil, apperrors.New(apperrors.CodeInvalidCredential, "invalid password")
	}
	id := Identity{ID: user.ID, Email: user.Email, Role: user.Role}
	expiresAt := i.now().Add(i.ttl)
	token, err := i.sign(id, expiresAt)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Identity: id}, nil
}

func (i *Issuer) sign(id Identity, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id.ID), 10),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Email: id.Email,
		Role:  string(id.Role),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve verifies token and returns the identity of its subject as currently
// stored, so role changes since issuance are honored.
// The signature is checked before the expiry: a tampered token is always
// InvalidToken, even when it is also expired.
func (i *Issuer) Resolve(ctx context.Context, token string) (Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Identity{}, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid session token", err)
	}
	if claims.ExpiresAt == nil {
		return Identity{}, apperrors.New(apperrors.CodeInvalidToken, "session token has no expiry")
	}
	if i.now().After(claims.ExpiresAt.Time) {
		return Identity{}, apperrors.New(apperrors.CodeExpiredSession, "session expired, please log in again")
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 {
		return Identity{}, apperrors.Wrap(apperrors.CodeInvalidToken, "session token has no valid subject", err)
	}

	user, err := i.users.FindUserByID(ctx, uint(uid))
	if err != nil {
		return Identity{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return Identity{}, apperrors.NotFound("user of this session no longer exists")
	}
	return Identity{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}
