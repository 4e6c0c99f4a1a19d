package model

import "time"

// User is a registered account. Passwords are stored as salted hashes.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Session is an issued credential with an explicit lifecycle: created at
// sign-in, revoked at sign-out. The token itself is a fernet message; the row
// exists so revocation is possible before expiry.
type Session struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Token     string     `json:"token"`
	IssuedAt  time.Time  `json:"issuedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}
