package user

import "time"

// User is the authentication principal. The password never leaves the
// authenticator as plaintext; only the bcrypt hash is stored.
type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
}

// Token is the issued credential returned by login.
type Token struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenData is what a verified token resolves to.
type TokenData struct {
	Username string
}

// BlacklistedToken records a credential revoked before its natural expiry.
// Rows are eligible for purge once Expire has passed.
type BlacklistedToken struct {
	Token     string
	Expire    time.Time
	CreatedAt time.Time
}
