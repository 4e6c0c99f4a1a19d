package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// SessionService handles account registration and session lifecycle. Tokens
// are fernet messages carrying the username; the session row exists so a
// token can be revoked before its expiry.
type SessionService struct {
	users *repository.UserRepository
	key   *fernet.Key
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionService creates a new SessionService. key is a base64 fernet key.
func NewSessionService(users *repository.UserRepository, key string, ttl time.Duration) (*SessionService, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session key: %w", err)
	}
	return &SessionService{
		users: users,
		key:   k,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// Register creates an account with a salted password hash.
func (s *SessionService) Register(ctx context.Context, username, password string) (model.User, error) {
	if username == "" || password == "" {
		return model.User{}, apperrors.ErrInvalidCredentials
	}

	hash, err := hashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{Username: username, PasswordHash: hash, CreatedAt: s.now()}
	if err := s.users.InsertUser(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Login verifies credentials and issues a session token.
func (s *SessionService) Login(ctx context.Context, username, password string) (model.Session, error) {
	u, err := s.users.GetUser(username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return model.Session{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.Session{}, err
	}
	if !verifyPassword(u.PasswordHash, password) {
		return model.Session{}, apperrors.ErrInvalidCredentials
	}

	token, err := fernet.EncryptAndSign([]byte(username), s.key)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	issuedAt := s.now()
	sess := model.Session{
		ID:        uuid.New().String(),
		Username:  username,
		Token:     string(token),
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.ttl),
	}
	if err := s.users.InsertSession(ctx, &sess); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// Logout revokes the session for a token. Revoking an unknown or already
// revoked token reports the session as not found.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	sess, err := s.users.GetSessionByToken(token)
	if err != nil {
		return err
	}
	return s.users.RevokeSession(ctx, sess.ID, repository.FormatTime(s.now()))
}

// Authenticate resolves a token to its username. The fernet layer rejects
// forged or aged tokens; the session row rejects revoked ones.
func (s *SessionService) Authenticate(token string) (string, error) {
	payload := fernet.VerifyAndDecrypt([]byte(token), s.ttl, []*fernet.Key{s.key})
	if payload == nil {
		return "", apperrors.ErrSessionExpired
	}

	sess, err := s.users.GetSessionByToken(token)
	if err != nil {
		return "", err
	}
	if sess.RevokedAt != nil {
		return "", apperrors.ErrSessionNotFound
	}
	if s.now().After(sess.ExpiresAt) {
		return "", apperrors.ErrSessionExpired
	}
	if sess.Username != string(payload) {
		return "", apperrors.ErrSessionNotFound
	}
	return sess.Username, nil
}

// hashPassword returns "salt$digest" with a random 16-byte salt and a
// SHA-256 digest of salt plus password, both hex encoded.
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest := sha256.Sum256(append(salt, []byte(password)...))
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(digest[:]), nil
}

func verifyPassword(stored, password string) bool {
	saltHex, digestHex, ok := strings.Cut(stored, "$")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(digestHex)
	if err != nil {
		return false
	}

	digest := sha256.Sum256(append(salt, []byte(password)...))
	return subtle.ConstantTimeCompare(digest[:], expected) == 1
}
