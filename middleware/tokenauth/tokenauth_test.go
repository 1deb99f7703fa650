package tokenauth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devlink/devlink/middleware/tokenauth"
)

type staticClaims struct {
	subject string
}

func (c staticClaims) Subject() string { return c.subject }
func (c staticClaims) UserID() string  { return c.subject }

type staticValidator struct {
	claims tokenauth.AuthClaims
	err    error
}

func (v staticValidator) Validate(tokenString string) (tokenauth.AuthClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func signToken(t *testing.T, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "12345",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newMiddleware(cfg tokenauth.Config) router.HandlerFunc {
	return tokenauth.New(cfg)(func(ctx router.Context) error {
		return ctx.Next()
	})
}

func TestTokenAuthValidToken(t *testing.T) {
	key := []byte("test-secret")
	raw := signToken(t, key)
	claims := staticClaims{subject: "12345"}

	handler := newMiddleware(tokenauth.Config{
		SigningKey:     tokenauth.SigningKey{Key: key, JWTAlg: jwt.SigningMethodHS256.Alg()},
		TokenValidator: staticValidator{claims: claims},
	})

	ctx := router.NewMockContext()
	ctx.HeadersM["x-auth-token"] = raw
	ctx.On("GetString", "x-auth-token", "").Return(raw)
	ctx.On("Locals", "user", mock.Anything).Return(nil)

	require.NoError(t, handler(ctx))
	assert.True(t, ctx.NextCalled)
}

func TestTokenAuthMissingToken(t *testing.T) {
	handler := newMiddleware(tokenauth.Config{
		SigningKey:     tokenauth.SigningKey{Key: []byte("test-secret")},
		TokenValidator: staticValidator{claims: staticClaims{}},
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "x-auth-token", "").Return("")

	var payload map[string]string
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]string)
	}).Return(nil)

	require.NoError(t, handler(ctx))
	assert.False(t, ctx.NextCalled)
	assert.Equal(t, "No token, authorization denied", payload["msg"])
}

func TestTokenAuthInvalidToken(t *testing.T) {
	handler := newMiddleware(tokenauth.Config{
		SigningKey:     tokenauth.SigningKey{Key: []byte("test-secret")},
		TokenValidator: staticValidator{err: assert.AnError},
	})

	ctx := router.NewMockContext()
	ctx.HeadersM["x-auth-token"] = "bogus-token"
	ctx.On("GetString", "x-auth-token", "").Return("bogus-token")

	var payload map[string]string
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]string)
	}).Return(nil)

	require.NoError(t, handler(ctx))
	assert.False(t, ctx.NextCalled)
	assert.Equal(t, "Token is not valid", payload["msg"])
}

func TestTokenAuthCustomErrorHandler(t *testing.T) {
	handler := newMiddleware(tokenauth.Config{
		SigningKey:     tokenauth.SigningKey{Key: []byte("test-secret")},
		TokenValidator: staticValidator{claims: staticClaims{}},
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "x-auth-token", "").Return("")

	err := handler(ctx)
	require.ErrorIs(t, err, tokenauth.ErrTokenMissing)
}

func TestTokenAuthFilterSkips(t *testing.T) {
	handler := newMiddleware(tokenauth.Config{
		SigningKey:     tokenauth.SigningKey{Key: []byte("test-secret")},
		TokenValidator: staticValidator{claims: staticClaims{}},
		Filter: func(ctx router.Context) bool {
			return true
		},
	})

	ctx := router.NewMockContext()

	require.NoError(t, handler(ctx))
	assert.True(t, ctx.NextCalled)
}

func TestGetExtractorsBareHeader(t *testing.T) {
	extractors := tokenauth.GetExtractors("header:x-auth-token")
	require.Len(t, extractors, 1)

	ctx := router.NewMockContext()
	ctx.HeadersM["x-auth-token"] = "raw-token-value"
	ctx.On("GetString", "x-auth-token", "").Return("raw-token-value")

	raw, err := extractors[0](ctx)
	require.NoError(t, err)
	assert.Equal(t, "raw-token-value", raw)
}

func TestGetExtractorsSchemeHeader(t *testing.T) {
	extractors := tokenauth.GetExtractors("header:Authorization", "Bearer")
	require.Len(t, extractors, 1)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer the-token")

	raw, err := extractors[0](ctx)
	require.NoError(t, err)
	assert.Equal(t, "the-token", raw)

	ctx = router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("the-token")

	_, err = extractors[0](ctx)
	require.ErrorIs(t, err, tokenauth.ErrTokenMissing)
}

func TestGetExtractorsMultipleLookups(t *testing.T) {
	extractors := tokenauth.GetExtractors("header:x-auth-token,query:token,cookie:token")
	require.Len(t, extractors, 3)

	ctx := router.NewMockContext()
	ctx.QueriesM["token"] = "from-query"
	ctx.On("GetString", "x-auth-token", "").Return("")

	raw, err := tokenauth.ExtractRawTokenFromContext(ctx, extractors)
	require.NoError(t, err)
	assert.Equal(t, "from-query", raw)
}
