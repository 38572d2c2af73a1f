package service

import (
	"crypto/rand"

	"github.com/identra/identra/pkg/errors"
)

// secretAlphabet is URL-safe so generated values can travel in query strings
// without encoding.
const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type secretService struct{}

// NewSecretService returns the cryptographically secure random string factory.
func NewSecretService() SecretService {
	return secretService{}
}

// GenerateRandomString returns a random string of exactly the requested
// length. Bytes outside the alphabet range are rejected and redrawn so every
// character is uniformly distributed.
func (secretService) GenerateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", errors.ErrValidationFailed(errors.FieldError{
			Field: "Length", Message: "length must be positive",
		})
	}

	// Largest multiple of len(alphabet) below 256; bytes at or above it would
	// bias the modulo and are redrawn.
	maxUnbiased := byte(256 - 256%len(secretAlphabet))

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.ErrInternal(err)
		}
		for _, b := range buf {
			if b >= maxUnbiased {
				continue
			}
			out = append(out, secretAlphabet[int(b)%len(secretAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
