package devlink

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
)

// RegisterUsersRoutes mounts the account registration endpoint.
func RegisterUsersRoutes[T any](app router.Router[T], opts ...UsersControllerOption) {
	controller := NewUsersController(opts...)

	app.Post("/api/users", controller.Register).SetName("users.register")
}

type UsersController struct {
	Logger Logger
	Auther Authenticator
}

type UsersControllerOption func(*UsersController) *UsersController

func NewUsersController(opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in users controller...")
	}

	return c
}

func WithUsersLogger(logger Logger) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Logger = logger
		return c
	}
}

func WithUsersAuthenticator(auther Authenticator) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Auther = auther
		return c
	}
}

// RegisterPayload is the registration request body.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Required.Error("Name is required"),
		),
		validation.Field(
			&r.Email,
			validation.Required.Error("Please include a valid email"),
			is.Email.Error("Please include a valid email"),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error("Please enter a password with 6 or more characters"),
			validation.Length(6, 0).Error("Please enter a password with 6 or more characters"),
		),
	)
}

// Register creates an account and responds with its first token.
func (a *UsersController) Register(ctx router.Context) error {
	payload := new(RegisterPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	token, err := a.Auther.Register(ctx.Context(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, TokenResponse{Token: token})
}
