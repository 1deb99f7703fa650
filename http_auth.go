package devlink

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts login and the current-identity lookup. The GET
// route is private and expects the token middleware in front of it.
func RegisterAuthRoutes[T any](app router.Router[T], protected router.MiddlewareFunc, opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post("/api/auth", controller.Login).SetName("auth.login")
	app.Get("/api/auth", controller.CurrentUser, protected).SetName("auth.current")
}

type AuthController struct {
	Logger     Logger
	Auther     Authenticator
	ContextKey string
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthContextKey(key string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ContextKey = key
		return c
	}
}

// LoginPayload is the login request body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required.Error("Please include a valid email"),
			is.Email.Error("Please include a valid email"),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error("Password is required"),
		),
	)
}

// Login exchanges credentials for a token.
func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	token, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, TokenResponse{Token: token})
}

// CurrentUser resolves the identity behind the request token. The password
// hash never serializes, the model hides it.
func (a *AuthController) CurrentUser(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return WriteError(ctx, a.Logger, ErrTokenMalformed)
	}

	user, err := a.Auther.IdentityFromClaims(ctx.Context(), claims)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, user)
}
