package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/config"
)

func validConfig() *config.Config {
	cfg := config.Default()
	cfg.OAuth.SigningSecret = "secret"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_SigningSecretRequired(t *testing.T) {
	cfg := validConfig()
	cfg.OAuth.SigningSecret = ""
	assert.Error(t, cfg.Validate())

	// Vault-backed deployments carry no static secret.
	cfg.Vault.Enabled = true
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	for name, mutate := range map[string]func(*config.Config){
		"zero code length":        func(c *config.Config) { c.OAuth.CodeLength = 0 },
		"zero code expiration":    func(c *config.Config) { c.OAuth.CodeExpirationMinutes = 0 },
		"zero purge interval":     func(c *config.Config) { c.Purge.Interval = 0 },
		"unknown database driver": func(c *config.Config) { c.Database.Driver = "mongodb" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCodeExpiration(t *testing.T) {
	cfg := validConfig()
	cfg.OAuth.CodeExpirationMinutes = 5
	assert.Equal(t, 5*time.Minute, cfg.OAuth.CodeExpiration())

	// Callable on plain values, not just addressable ones.
	assert.Equal(t, 5*time.Minute, config.OAuthConfig{CodeExpirationMinutes: 5}.CodeExpiration())
}

func TestDSN(t *testing.T) {
	db := config.DatabaseConfig{
		Host: "db.internal", Port: 5432, User: "identra",
		Password: "pw", Database: "identra", SSLMode: "disable",
	}
	dsn := db.DSN()
	require.Contains(t, dsn, "host=db.internal")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "sslmode=disable")
}
