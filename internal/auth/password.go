package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost  int
	dummy []byte
}

// NewPasswordHasher returns a hasher at cost. Out of range costs fall back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("placeholder-password"), cost)
	return &PasswordHasher{cost: cost, dummy: dummy}
}

// Hash hashes a plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare verifies a password against its hashed value.
func (h *PasswordHasher) Compare(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// CompareDummy spends the same time as Compare so unknown accounts are not cheaper to probe.
func (h *PasswordHasher) CompareDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
