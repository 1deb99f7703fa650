package devlink

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testIdentity struct {
	id    string
	name  string
	email string
}

func (t testIdentity) ID() string    { return t.id }
func (t testIdentity) Name() string  { return t.name }
func (t testIdentity) Email() string { return t.email }

func newTestIdentity() testIdentity {
	return testIdentity{
		id:    uuid.NewString(),
		name:  "Ada Lovelace",
		email: "ada@example.com",
	}
}

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), 1, "devlink", nil)
	identity := newTestIdentity()

	token, err := ts.Generate(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, identity.id, claims.Subject())
	assert.Equal(t, identity.id, claims.UserID())

	uid, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, identity.id, uid.String())

	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), time.Minute)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt(), time.Minute)
}

func TestTokenServiceValidateExpired(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), 1, "devlink", nil).(*TokenServiceImpl)

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "devlink",
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}

	token, err := ts.SignClaims(claims)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenServiceValidateRejectsBadInput(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), 1, "devlink", nil)
	identity := newTestIdentity()

	valid, err := ts.Generate(identity)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":       "",
		"garbage":     "not-a-token",
		"truncated":   valid[:len(valid)-10],
		"two dots":    "a.b",
		"whitespace":  "   ",
		"almost jwt":  "aaaa.bbbb.cccc",
		"extra parts": valid + ".extra",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Validate(raw)
			require.Error(t, err)
		})
	}
}

func TestTokenServiceValidateRejectsWrongKey(t *testing.T) {
	issuer := NewTokenService([]byte("secret-one"), 1, "devlink", nil)
	verifier := NewTokenService([]byte("secret-two"), 1, "devlink", nil)

	token, err := issuer.Generate(newTestIdentity())
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTokenExpired)
}

func TestTokenServiceValidateRejectsUnsignedToken(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), 1, "devlink", nil)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ts.Validate(raw)
	require.Error(t, err)
}

func TestTokenServiceGenerateAssignsTokenID(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), 1, "devlink", nil)
	identity := newTestIdentity()

	first, err := ts.Generate(identity)
	require.NoError(t, err)
	second, err := ts.Generate(identity)
	require.NoError(t, err)

	// Token IDs are random so two tokens for the same identity differ.
	assert.NotEqual(t, first, second)
}
