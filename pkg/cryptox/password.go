package cryptox

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the platform has always used; bumping it
// only affects newly stored hashes.
const bcryptCost = 10

var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// minPasswordLength is the floor the platform has always advertised in its
// password error messages.
const minPasswordLength = 8

var (
	lowerRe  = regexp.MustCompile(`[a-z]`)
	upperRe  = regexp.MustCompile(`[A-Z]`)
	digitRe  = regexp.MustCompile(`[0-9]`)
	symbolRe = regexp.MustCompile(`[!.@#$%^&*]`)
)

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// Returns ErrPasswordMismatch when they don't match.
func VerifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// CheckPasswordFormat reports whether a password satisfies the platform's
// length and character-class policy.
func CheckPasswordFormat(password string) bool {
	return len(password) >= minPasswordLength &&
		lowerRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		digitRe.MatchString(password) &&
		symbolRe.MatchString(password)
}
