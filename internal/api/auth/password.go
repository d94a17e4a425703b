package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

var hashCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches stored.
// Rows written before passwords were hashed hold the plain password and are compared in constant time.
func CheckPassword(stored, password string) bool {
	if stored == "" {
		return false
	}
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}
