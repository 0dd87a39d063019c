// Package storage defines the account model, the credential rules and the
// errors shared by the persistence backends.
package storage

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Credential limits. bcrypt ignores input past 72 bytes, so longer
// passwords are refused rather than silently truncated.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 6
	MaxPasswordLen = 72
)

// Account is a registered player.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

var (
	// ErrAccountNotFound is returned when an account lookup yields no results.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when attempting to create a duplicate username.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidUsername is returned for a username outside the allowed
	// length or alphabet.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrPasswordTooShort and ErrPasswordTooLong report password length violations.
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
)

// ValidateCredentials checks a username and password against the account
// rules: usernames are 3-32 ASCII letters, digits, '_' or '-'; passwords are
// 6-72 bytes.
//
// Postcondition: Returns nil, or an error wrapping ErrInvalidUsername,
// ErrPasswordTooShort or ErrPasswordTooLong.
func ValidateCredentials(username, password string) error {
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return fmt.Errorf("%w: length %d not in [%d, %d]", ErrInvalidUsername, len(username), MinUsernameLen, MaxUsernameLen)
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return fmt.Errorf("%w: character %q not allowed", ErrInvalidUsername, r)
		}
	}
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLen {
		return ErrPasswordTooLong
	}
	return nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
