package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/domain/user"
	"reviewd/internal/errs"
	"reviewd/internal/ports"
)

var (
	ErrBadCredentials = errors.New("incorrect username or password")
	ErrUsernameTaken  = errors.New("username already registered")
	ErrEmailTaken     = errors.New("email already registered")
)

// Service orchestrates registration, login and logout over the
// authenticator and the user repository.
type Service struct {
	auth  *Authenticator
	users ports.UserRepository
	uow   ports.UnitOfWork
}

func NewService(auth *Authenticator, users ports.UserRepository, uow ports.UnitOfWork) *Service {
	return &Service{
		auth:  auth,
		users: users,
		uow:   uow,
	}
}

func (s *Service) Authenticator() *Authenticator {
	return s.auth
}

// FindUser looks a user up by username. Used by administrative commands that
// operate outside a token context.
func (s *Service) FindUser(ctx context.Context, username string) (user.User, error) {
	if ctx == nil {
		return user.User{}, errors.New("context is required")
	}
	return s.users.FindByUsername(ctx, strings.TrimSpace(username))
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a user with a hashed password. The duplicate checks and
// the insert run in one transaction so concurrent registrations of the same
// name cannot both pass the check.
func (s *Service) Register(ctx context.Context, input RegisterInput) (user.User, error) {
	if ctx == nil {
		return user.User{}, errors.New("context is required")
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return user.User{}, errors.New("username, email and password are required")
	}

	hashed, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return user.User{}, err
	}

	var created user.User
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.users.FindByUsername(txCtx, username); findErr == nil {
			return ErrUsernameTaken
		} else if !errors.Is(findErr, ports.ErrUserNotFound) {
			return errs.Wrap(findErr, "check username")
		}

		if _, findErr := s.users.FindByEmail(txCtx, email); findErr == nil {
			return ErrEmailTaken
		} else if !errors.Is(findErr, ports.ErrUserNotFound) {
			return errs.Wrap(findErr, "check email")
		}

		var createErr error
		created, createErr = s.users.Create(txCtx, user.User{
			Username:       username,
			Email:          email,
			HashedPassword: hashed,
			IsActive:       true,
			CreatedAt:      time.Now().UTC(),
		})
		if errors.Is(createErr, ports.ErrDuplicateUser) {
			return ErrUsernameTaken
		}
		return createErr
	})
	if err != nil {
		return user.User{}, err
	}

	logging.Info(ctx, "user registered", slog.String("username", created.Username))
	return created, nil
}

// Login exchanges credentials for an access token.
func (s *Service) Login(ctx context.Context, username string, password string) (user.Token, error) {
	if ctx == nil {
		return user.Token{}, errors.New("context is required")
	}

	u, ok, err := s.auth.AuthenticateUser(ctx, username, password)
	if err != nil {
		return user.Token{}, err
	}
	if !ok {
		return user.Token{}, ErrBadCredentials
	}
	if !u.IsActive {
		return user.Token{}, ErrInactiveUser
	}

	token, err := s.auth.CreateAccessToken(u.Username, 0)
	if err != nil {
		return user.Token{}, err
	}

	return user.Token{
		Username:    capitalize(u.Username),
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.auth.AccessTokenTTL().Seconds()),
	}, nil
}

// Logout blacklists the token. Always reported as a success to the caller;
// the client discards the token either way.
func (s *Service) Logout(ctx context.Context, token string) bool {
	if ctx == nil {
		return false
	}
	return s.auth.BlacklistToken(ctx, token)
}

func capitalize(value string) string {
	runes := []rune(value)
	if len(runes) == 0 {
		return value
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
