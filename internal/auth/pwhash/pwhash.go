package pwhash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const keyLength = 32

// PasswordHasher derives and verifies PBKDF2-SHA256 password hashes stored as
// iterations$salt$key with base64 salt and key.
type PasswordHasher struct {
	saltSize   int
	iterations int
}

func New(saltSize, iterations int) (*PasswordHasher, error) {
	if saltSize < 8 {
		return nil, fmt.Errorf("salt size too small: %d", saltSize)
	}
	if iterations < 1000 {
		return nil, fmt.Errorf("iteration count too small: %d", iterations)
	}
	return &PasswordHasher{
		saltSize:   saltSize,
		iterations: iterations,
	}, nil
}

func (ph *PasswordHasher) HashPassword(password string) (string, error) {
	salt := make([]byte, ph.saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("can't generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, ph.iterations, keyLength, sha256.New)
	return fmt.Sprintf("%d$%s$%s",
		ph.iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Validate returns nil when the password matches the stored hash.
func (ph *PasswordHasher) Validate(password, hash string) error {
	parts := strings.Split(hash, "$")
	if len(parts) != 3 {
		return fmt.Errorf("malformed password hash")
	}
	iterations, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("malformed iteration count: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("malformed salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("malformed key: %w", err)
	}
	got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return fmt.Errorf("password mismatch")
	}
	return nil
}
