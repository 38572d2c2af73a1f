package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/pkg/errors"
)

func TestGenerateRandomString_Length(t *testing.T) {
	svc := service.NewSecretService()

	for _, length := range []int{1, 16, 32, 48, 64} {
		got, err := svc.GenerateRandomString(length)
		require.NoError(t, err)
		assert.Len(t, got, length)
	}
}

func TestGenerateRandomString_Alphabet(t *testing.T) {
	svc := service.NewSecretService()

	got, err := svc.GenerateRandomString(256)
	require.NoError(t, err)
	for _, r := range got {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.True(t, ok, "unexpected character %q", r)
	}
}

func TestGenerateRandomString_Unique(t *testing.T) {
	svc := service.NewSecretService()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		got, err := svc.GenerateRandomString(32)
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate secret generated")
		seen[got] = true
	}
}

func TestGenerateRandomString_InvalidLength(t *testing.T) {
	svc := service.NewSecretService()

	for _, length := range []int{0, -1} {
		_, err := svc.GenerateRandomString(length)
		require.Error(t, err)
		assert.True(t, errors.IsValidationFailed(err))
	}
}
