package service

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

// MinPasswordLength is enforced whenever a password is set.
const MinPasswordLength = 8

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", domain.Invalidf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// dummyHash is compared against when the username does not exist, so a miss
// costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("inventory-api:unknown-user"), bcrypt.DefaultCost)
	return h
})
