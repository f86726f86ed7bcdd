package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/models"
)

// memUsers is an in-memory UserFinder.
type memUsers struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: make(map[uint]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindUserByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) delete(id uint) {
	m.mu.Lock()
	delete(m.users, id)
	m.mu.Unlock()
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestIssuer(t *testing.T) (*Issuer, *memUsers, *fakeClock) {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	users := newMemUsers(&models.User{ID: 1, Name: "Alice", Email: "alice@example.com", Password: hash, Role: models.RoleCommercial})
	clock := &fakeClock{t: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)}
	iss, err := NewIssuer(users, []byte("test-secret"), WithClock(clock.Now))
	require.NoError(t, err)
	return iss, users, clock
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer(newMemUsers(), nil)
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	iss, _, clock := newTestIssuer(t)
	ctx := context.Background()

	sess, err := iss.Authenticate(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.True(t, sess.Active())
	assert.Equal(t, Identity{ID: 1, Email: "alice@example.com", Role: models.RoleCommercial}, sess.Identity)
	assert.Equal(t, clock.Now().Add(2*time.Hour), sess.ExpiresAt)

	var claims sessionClaims
	_, _, err = jwt.NewParser().ParseUnverified(sess.Token, &claims)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "commercial", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthenticate_Failures(t *testing.T) {
	iss, _, _ := newTestIssuer(t)
	ctx := context.Background()

	_, err := iss.Authenticate(ctx, "bob@example.com", "s3cret")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), "got %v", err)

	_, err = iss.Authenticate(ctx, "ALICE@example.com", "s3cret")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), "email lookup is exact, got %v", err)

	_, err = iss.Authenticate(ctx, "alice@example.com", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCredential), "got %v", err)
}

func TestResolve(t *testing.T) {
	iss, users, clock := newTestIssuer(t)
	ctx := context.Background()

	sess, err := iss.Authenticate(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	id, err := iss.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Identity, id)

	// role changes since issuance are honored
	users.users[1].Role = models.RoleGestion
	id, err = iss.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGestion, id.Role)
}

func TestResolve_Expired(t *testing.T) {
	iss, _, clock := newTestIssuer(t)

	token, err := iss.sign(Identity{ID: 1, Email: "alice@example.com", Role: models.RoleCommercial}, clock.Now().Add(-time.Second))
	require.NoError(t, err)

	_, err = iss.Resolve(context.Background(), token)
	assert.True(t, apperrors.Is(err, apperrors.CodeExpiredSession), "got %v", err)
}

func TestResolve_ExpiresAfterTTL(t *testing.T) {
	iss, _, clock := newTestIssuer(t)
	ctx := context.Background()

	sess, err := iss.Authenticate(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	clock.Advance(2*time.Hour + time.Second)
	_, err = iss.Resolve(ctx, sess.Token)
	assert.True(t, apperrors.Is(err, apperrors.CodeExpiredSession), "got %v", err)
}

func TestResolve_TamperedSignature(t *testing.T) {
	iss, _, _ := newTestIssuer(t)
	ctx := context.Background()

	sess, err := iss.Authenticate(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	parts := strings.Split(sess.Token, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[0] ^= 0xff
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	_, err = iss.Resolve(ctx, strings.Join(parts, "."))
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidToken), "got %v", err)
}

func TestResolve_TamperedAndExpiredIsInvalid(t *testing.T) {
	iss, _, clock := newTestIssuer(t)

	token, err := iss.sign(Identity{ID: 1, Email: "alice@example.com", Role: models.RoleCommercial}, clock.Now().Add(-time.Minute))
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[5] ^= 0x01
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	_, err = iss.Resolve(context.Background(), strings.Join(parts, "."))
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidToken), "got %v", err)
}

func TestResolve_WrongSecretOrGarbage(t *testing.T) {
	iss, users, clock := newTestIssuer(t)
	other, err := NewIssuer(users, []byte("another-secret"), WithClock(clock.Now))
	require.NoError(t, err)

	sess, err := other.Authenticate(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	for _, token := range []string{sess.Token, "", "not-a-token", "a.b.c"} {
		_, err := iss.Resolve(context.Background(), token)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidToken), "token %q: got %v", token, err)
	}
}

func TestResolve_RejectsOtherAlgorithms(t *testing.T) {
	iss, _, clock := newTestIssuer(t)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour))},
		Role:             "gestion",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Resolve(context.Background(), token)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidToken), "got %v", err)
}

func TestResolve_DeletedUser(t *testing.T) {
	iss, users, _ := newTestIssuer(t)
	ctx := context.Background()

	sess, err := iss.Authenticate(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	users.delete(1)

	_, err = iss.Resolve(ctx, sess.Token)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), "got %v", err)
}

func TestSession_Invalidate(t *testing.T) {
	iss, _, _ := newTestIssuer(t)
	sess, err := iss.Authenticate(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	sess.Invalidate()
	assert.False(t, sess.Active())
	assert.Empty(t, sess.Token)
	assert.True(t, sess.Identity.IsZero())

	var nilSession *Session
	nilSession.Invalidate()
	assert.False(t, nilSession.Active())
}
