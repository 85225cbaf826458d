package provisioning

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generatePassword returns a random password of length n drawn from an
// alphabet without look-alike characters.
func generatePassword(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("provisioning: generate password: %w", err)
	}
	for i, b := range raw {
		raw[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(raw), nil
}

// generateUsername returns a fleet-scoped login name, e.g. pumpsign-9f2c41d8.
func generateUsername() (string, error) {
	raw := make([]byte, 4)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("provisioning: generate username: %w", err)
	}
	return "pumpsign-" + hex.EncodeToString(raw), nil
}

// hashPassword stores only the bcrypt hash; the plaintext leaves the system
// once, inside the provisioning result and setup payload.
func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("provisioning: hash password: %w", err)
	}
	return string(hash), nil
}
