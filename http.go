package devlink

import (
	"context"

	"github.com/devlink/devlink/middleware/tokenauth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// MessageResponse is the single-message API envelope.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// ErrorsResponse is the list envelope validation failures render as.
type ErrorsResponse struct {
	Errors []MessageResponse `json:"errors"`
}

// TokenResponse carries a freshly issued token.
type TokenResponse struct {
	Token string `json:"token"`
}

// WriteError renders any error as the API error envelope. Errors carrying a
// message list render as {"errors":[{"msg":...}]}, everything else as
// {"msg":...}. Unexpected errors come back as a plain 500 Server Error with
// the detail logged, never returned to the client.
func WriteError(ctx router.Context, logger Logger, err error) error {
	if logger == nil {
		logger = defLogger{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = errors.CodeInternal
	}

	if status >= 500 {
		logger.Error(
			"request failed",
			"error", richErr.Message,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
		return ctx.JSON(status, MessageResponse{Msg: "Server Error"})
	}

	if msgs := ValidationMessages(richErr); len(msgs) > 0 {
		out := make([]MessageResponse, 0, len(msgs))
		for _, msg := range msgs {
			out = append(out, MessageResponse{Msg: msg})
		}
		return ctx.JSON(status, ErrorsResponse{Errors: out})
	}

	return ctx.JSON(status, MessageResponse{Msg: richErr.Message})
}

// ProtectedRoute builds the token middleware for private routes using the
// shared Config and token service.
func ProtectedRoute(cfg Config, tokenService TokenService) router.MiddlewareFunc {
	return tokenauth.New(tokenauth.Config{
		TokenValidator: tokenValidatorAdapter{tokenService},
		SigningKey: tokenauth.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		ContextKey:  cfg.GetContextKey(),
		TokenLookup: cfg.GetTokenLookup(),
		ContextEnricher: func(c context.Context, claims tokenauth.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(c, ac)
			}
			return c
		},
	})
}

// tokenValidatorAdapter narrows the token service to the interface the
// middleware consumes.
type tokenValidatorAdapter struct {
	ts TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (tokenauth.AuthClaims, error) {
	claims, err := a.ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
