package devlink

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// RegisterUserMessage carries the attributes of a new account.
type RegisterUserMessage struct {
	Name     string
	Email    string
	Password string
}

// Auther registers and authenticates accounts and exchanges valid
// credentials for signed tokens.
type Auther struct {
	repo         Users
	logger       Logger
	tokenService TokenService
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo Users, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		repo:         repo,
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates a new account and returns its first token. A taken email
// reports ErrEmailTaken without touching the existing account, its
// previously issued tokens stay valid.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (string, error) {
	if _, err := s.repo.GetByEmail(ctx, msg.Email); err == nil {
		return "", ErrEmailTaken
	} else if !repository.IsRecordNotFound(err) && !errors.IsNotFound(err) {
		s.logger.Error("Register lookup error", "error", err)
		return "", err
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		s.logger.Error("Register hash error", "error", err)
		return "", err
	}

	user := &User{
		Name:         msg.Name,
		Email:        msg.Email,
		PasswordHash: hash,
		Avatar:       GravatarURL(msg.Email),
	}

	user, err = s.repo.Register(ctx, user)
	if err != nil {
		s.logger.Error("Register create error", "error", err)
		return "", err
	}

	return s.tokenService.Generate(userIdentity{user})
}

// Login verifies the credentials and returns a fresh token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		s.logger.Error("Login lookup error", "error", err)
		return "", err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokenService.Generate(userIdentity{user})
}

// IdentityFromClaims loads the account behind a validated token.
func (s *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	id, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := s.repo.GetByIdentifier(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return nil, ErrTokenMalformed
		}
		s.logger.Error("IdentityFromClaims lookup error", "error", err)
		return nil, err
	}

	return user, nil
}

// userIdentity adapts the stored record to the Identity the token service
// signs.
type userIdentity struct {
	user *User
}

func (u userIdentity) ID() string    { return u.user.ID.String() }
func (u userIdentity) Name() string  { return u.user.Name }
func (u userIdentity) Email() string { return u.user.Email }
