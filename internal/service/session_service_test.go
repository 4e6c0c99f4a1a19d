package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/testutil"
)

func TestSessionLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSessionService(t, db, time.Hour)

	if _, err := svc.Register(t.Context(), "alice", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("login issues a verifiable token", func(t *testing.T) {
		sess, err := svc.Login(t.Context(), "alice", "s3cret")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if sess.Token == "" {
			t.Fatal("expected a non-empty token")
		}
		if !sess.ExpiresAt.After(sess.IssuedAt) {
			t.Errorf("expiry %v not after issue %v", sess.ExpiresAt, sess.IssuedAt)
		}

		username, err := svc.Authenticate(sess.Token)
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if username != "alice" {
			t.Errorf("authenticated as %q, want alice", username)
		}
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		sess, err := svc.Login(t.Context(), "alice", "s3cret")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if err := svc.Logout(t.Context(), sess.Token); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}

		_, err = svc.Authenticate(sess.Token)
		if !errors.Is(err, apperrors.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login(t.Context(), "alice", "wrong")
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user is indistinguishable from a wrong password", func(t *testing.T) {
		_, err := svc.Login(t.Context(), "nobody", "s3cret")
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("forged token fails verification", func(t *testing.T) {
		_, err := svc.Authenticate("gAAAAABnot-a-real-token")
		if !errors.Is(err, apperrors.ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired for a forged token, got %v", err)
		}
	})

	t.Run("empty credentials cannot register", func(t *testing.T) {
		if _, err := svc.Register(t.Context(), "", "pw"); !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for empty username, got %v", err)
		}
		if _, err := svc.Register(t.Context(), "bob", ""); !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for empty password, got %v", err)
		}
	})

	t.Run("password hash is salted", func(t *testing.T) {
		u1, err := svc.Register(t.Context(), "carol", "same")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		u2, err := svc.Register(t.Context(), "dave", "same")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if u1.PasswordHash == u2.PasswordHash {
			t.Error("identical passwords produced identical hashes")
		}
	})
}

func TestSessionExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	// A TTL short enough to lapse within the test.
	svc := testutil.NewTestSessionService(t, db, time.Millisecond)

	if _, err := svc.Register(t.Context(), "alice", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	sess, err := svc.Login(t.Context(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Authenticate(sess.Token)
	if !errors.Is(err, apperrors.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}
