package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		email        string
		username     string
		wantEmail    string
		wantUsername string
		wantErr      error
	}{
		{
			name:         "email is trimmed and lower-cased",
			email:        "  Fast.Fingers@Example.COM ",
			username:     "speedy",
			wantEmail:    "fast.fingers@example.com",
			wantUsername: "speedy",
		},
		{
			name:         "username falls back to the mailbox",
			email:        "Touch.Typist@example.com",
			wantEmail:    "touch.typist@example.com",
			wantUsername: "Touch.Typist",
		},
		{
			name:         "username is trimmed",
			email:        "a@example.com",
			username:     "  homerow  ",
			wantEmail:    "a@example.com",
			wantUsername: "homerow",
		},
		{
			name:         "username length counts runes",
			email:        "b@example.com",
			username:     "ñññ",
			wantEmail:    "b@example.com",
			wantUsername: "ñññ",
		},
		{name: "username too short", email: "c@example.com", username: "ab", wantErr: ErrInvalidUsername},
		{name: "username too long", email: "d@example.com", username: strings.Repeat("k", 33), wantErr: ErrInvalidUsername},
		{name: "derived username too short", email: "xy@example.com", wantErr: ErrInvalidUsername},
		{name: "invalid email", email: "invalid-email-format", wantErr: ErrInvalidEmail},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := NewUser("user-1", tt.email, tt.username)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.Email != tt.wantEmail {
				t.Errorf("email = %q, want %q", user.Email, tt.wantEmail)
			}
			if user.Username != tt.wantUsername {
				t.Errorf("username = %q, want %q", user.Username, tt.wantUsername)
			}
			if user.ID != "user-1" || user.CreatedAt.IsZero() {
				t.Errorf("id and timestamps must be set, got %+v", user)
			}
		})
	}
}

func TestUserPassword(t *testing.T) {
	t.Parallel()

	t.Run("hash replaces the plain text and bumps UpdatedAt", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("user-1", "pw@example.com", "typist")
		before := user.UpdatedAt

		time.Sleep(time.Millisecond)

		if err := user.SetPassword("quick brown fox"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.PasswordHash == "" || user.PasswordHash == "quick brown fox" {
			t.Errorf("password was not hashed: %q", user.PasswordHash)
		}
		if !user.UpdatedAt.After(before) {
			t.Error("UpdatedAt should move forward")
		}
	})

	t.Run("length is measured in runes", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("user-1", "pw@example.com", "typist")

		if err := user.SetPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
			t.Errorf("expected ErrPasswordTooShort, got %v", err)
		}
		if err := user.SetPassword("éééé"); !errors.Is(err, ErrPasswordTooShort) {
			t.Errorf("4 runes must be too short even at 8 bytes, got %v", err)
		}
	})

	t.Run("check accepts only the original password", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("user-1", "pw@example.com", "typist")
		_ = user.SetPassword("correct horse")

		if err := user.CheckPassword("correct horse"); err != nil {
			t.Errorf("expected match, got %v", err)
		}
		if err := user.CheckPassword("correct h0rse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
