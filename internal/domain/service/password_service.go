package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/pkg/errors"
)

type passwordService struct {
	minLength int
	cost      int
}

// NewPasswordService returns the bcrypt-backed password factory. A zero cost
// selects the bcrypt default.
func NewPasswordService(cfg config.PasswordConfig) PasswordService {
	cost := cfg.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &passwordService{minLength: cfg.MinLength, cost: cost}
}

// Hash produces a salted bcrypt hash. bcrypt embeds a fresh salt per call, so
// hashing the same plaintext twice yields different values.
func (s *passwordService) Hash(plaintext string) (string, error) {
	if len(plaintext) < s.minLength {
		return "", errors.ErrValidationFailed(errors.FieldError{
			Field:   "Password",
			Message: fmt.Sprintf("password must be at least %d characters", s.minLength),
		})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", errors.ErrInternal(err)
	}
	return string(hash), nil
}

// Verify compares in constant time via bcrypt.
func (s *passwordService) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
