package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"reviewd/internal/bootstrap/config"
	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/domain/user"
	"reviewd/internal/errs"
	"reviewd/internal/ports"
)

var (
	// ErrUnauthorized covers every token failure mode: revoked, malformed,
	// expired, bad signature, missing subject claim.
	ErrUnauthorized = errors.New("could not validate credentials")
	ErrTokenRevoked = fmt.Errorf("%w: token has been revoked", ErrUnauthorized)
	ErrInactiveUser = errors.New("inactive user")
)

// fallbackBlacklistTTL is used when a token's expiry cannot be decoded during
// logout; the token is still blacklisted.
const fallbackBlacklistTTL = 24 * time.Hour

// Authenticator owns password hashing, JWT issuance/validation and the token
// blacklist. Token lifecycle: issued -> valid -> (expired | blacklisted);
// the blacklist is consulted before signature and expiry checks.
type Authenticator struct {
	users  ports.UserRepository
	tokens ports.TokenStore
	secret []byte
	ttl    time.Duration
}

func NewAuthenticator(cfg config.AuthConfig, users ports.UserRepository, tokens ports.TokenStore) *Authenticator {
	return &Authenticator{
		users:  users,
		tokens: tokens,
		secret: []byte(cfg.Secret),
		ttl:    cfg.AccessTokenTTL(),
	}
}

func (a *Authenticator) AccessTokenTTL() time.Duration {
	return a.ttl
}

func (a *Authenticator) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func (a *Authenticator) VerifyPassword(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// AuthenticateUser resolves username+password to a user. A mismatch is not an
// error: ok is false and err is nil.
func (a *Authenticator) AuthenticateUser(ctx context.Context, username string, password string) (user.User, bool, error) {
	if ctx == nil {
		return user.User{}, false, errors.New("context is required")
	}

	u, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return user.User{}, false, nil
		}
		return user.User{}, false, errs.Wrap(err, "find user by username")
	}

	if !a.VerifyPassword(password, u.HashedPassword) {
		return user.User{}, false, nil
	}
	return u, true, nil
}

// CreateAccessToken issues a signed JWT with the username as subject. A
// non-positive ttl falls back to the configured default.
func (a *Authenticator) CreateAccessToken(username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = a.ttl
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", errs.Wrap(err, "sign access token")
	}
	return signed, nil
}

// VerifyToken checks the blacklist first, then signature, expiry and the
// subject claim.
func (a *Authenticator) VerifyToken(ctx context.Context, token string) (user.TokenData, error) {
	if ctx == nil {
		return user.TokenData{}, errors.New("context is required")
	}

	if a.IsTokenBlacklisted(ctx, token) {
		return user.TokenData{}, ErrTokenRevoked
	}

	claims, err := a.parseClaims(token)
	if err != nil {
		return user.TokenData{}, ErrUnauthorized
	}
	if claims.Subject == "" {
		return user.TokenData{}, ErrUnauthorized
	}

	return user.TokenData{Username: claims.Subject}, nil
}

// CurrentUser resolves a bearer token to its active principal.
func (a *Authenticator) CurrentUser(ctx context.Context, token string) (user.User, error) {
	data, err := a.VerifyToken(ctx, token)
	if err != nil {
		return user.User{}, err
	}

	u, err := a.users.FindByUsername(ctx, data.Username)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return user.User{}, ErrUnauthorized
		}
		return user.User{}, errs.Wrap(err, "find token user")
	}

	if !u.IsActive {
		return user.User{}, ErrInactiveUser
	}
	return u, nil
}

// BlacklistToken is best-effort: when the token's expiry cannot be decoded it
// is blacklisted anyway with a fallback expiry, so a tampered token cannot
// dodge revocation.
func (a *Authenticator) BlacklistToken(ctx context.Context, token string) bool {
	if ctx == nil {
		return false
	}

	expire := time.Now().UTC().Add(fallbackBlacklistTTL)
	if claims, err := a.parseClaims(token); err == nil && claims.ExpiresAt != nil {
		expire = claims.ExpiresAt.Time
	}

	if err := a.tokens.Add(ctx, user.BlacklistedToken{Token: token, Expire: expire}); err != nil {
		logging.Warn(ctx, "blacklist token failed", slog.Any("err", errs.Loggable(err)))
		return false
	}
	return true
}

func (a *Authenticator) IsTokenBlacklisted(ctx context.Context, token string) bool {
	blacklisted, err := a.tokens.IsBlacklisted(ctx, token)
	if err != nil {
		logging.Warn(ctx, "blacklist lookup failed", slog.Any("err", errs.Loggable(err)))
		return false
	}
	return blacklisted
}

// PurgeExpiredTokens removes blacklist rows whose expiry has passed. Invoked
// on demand; there is no scheduled purge.
func (a *Authenticator) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	return a.tokens.PurgeExpired(ctx)
}

func (a *Authenticator) parseClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
