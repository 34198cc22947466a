package password

import (
	"errors"

	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"github.com/skilllink/skilllink/internal/config"
)

// ErrMismatch indicates the supplied password does not match the stored hash.
var ErrMismatch = errors.New("password mismatch")

// Hasher hashes and verifies credentials with bcrypt.
type Hasher struct {
	cost int
}

// Module provides the password hasher to the Fx graph.
var Module = fx.Provide(NewHasher)

// NewHasher builds a Hasher with the configured cost.
func NewHasher(cfg config.Config) *Hasher {
	cost := cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a bcrypt hash from the plaintext password.
func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare verifies plain against the stored hash.
func (h *Hasher) Compare(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrMismatch
	}
	return nil
}
