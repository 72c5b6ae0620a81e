package cryptox

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the existing credential corpus was
// hashed with, so freshly migrated and freshly changed passwords verify
// at the same cost.
const bcryptCost = 10

// HashPassword returns a salted bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// IsHashed reports whether a stored credential value is a bcrypt hash.
// Anything without a bcrypt version prefix is treated as a legacy
// plaintext value that still needs write-back migration.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// VerifyPassword compares a presented password against a stored value.
// Hashed values get a bcrypt comparison; legacy plaintext values get a
// constant-time equality check. A mismatch is a plain false, never an
// error.
func VerifyPassword(password, stored string) bool {
	if stored == "" {
		return false
	}

	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}
