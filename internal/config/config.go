package config

import (
	"fmt"
	"time"

	"github.com/identra/identra/pkg/constants"
)

// Config holds the full configuration surface consumed by the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Vault    VaultConfig    `mapstructure:"vault"`
	Audit    AuditConfig    `mapstructure:"audit"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Password PasswordConfig `mapstructure:"password"`
	TOTP     TOTPConfig     `mapstructure:"totp"`
	Purge    PurgeConfig    `mapstructure:"purge"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
}

type DatabaseConfig struct {
	// Driver selects the storage backend: "memory", "sqlite" or "postgres".
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	// Path is the sqlite database file when Driver is "sqlite".
	Path string `mapstructure:"path"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	// Enabled switches the authorization-code repository to the redis backend.
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type VaultConfig struct {
	// Enabled sources signing secrets from Vault instead of the static config.
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	MountPath string `mapstructure:"mount_path"`
	SecretKey string `mapstructure:"secret_key"`
}

type AuditConfig struct {
	// Enabled turns on kafka audit event publishing from the pipeline.
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OAuthConfig struct {
	// SigningSecret signs newly issued access tokens.
	SigningSecret string `mapstructure:"signing_secret"`
	// PreviousSigningSecret remains trusted for verification during rotation.
	PreviousSigningSecret string `mapstructure:"previous_signing_secret"`

	CodeLength         int `mapstructure:"code_length"`
	SecretLength       int `mapstructure:"secret_length"`
	RefreshTokenLength int `mapstructure:"refresh_token_length"`

	AccessTokenExpirationMinutes  int `mapstructure:"access_token_expiration_minutes"`
	RefreshTokenExpirationMinutes int `mapstructure:"refresh_token_expiration_minutes"`
	CodeExpirationMinutes         int `mapstructure:"code_expiration_minutes"`

	Issuer string `mapstructure:"issuer"`
}

func (c OAuthConfig) CodeExpiration() time.Duration {
	return time.Duration(c.CodeExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength int `mapstructure:"min_length"`
	// Cost is the bcrypt work factor; zero means the library default.
	Cost int `mapstructure:"cost"`
}

type TOTPConfig struct {
	SecretLength     int    `mapstructure:"secret_length"`
	ToleranceMinutes int    `mapstructure:"tolerance_minutes"`
	PixelsPerModule  int    `mapstructure:"pixels_per_module"`
	Issuer           string `mapstructure:"issuer"`
}

type PurgeConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

// Validate checks essential configuration values.
func (c *Config) Validate() error {
	if c.OAuth.SigningSecret == "" && !c.Vault.Enabled {
		return fmt.Errorf("oauth.signing_secret is required unless vault is enabled")
	}
	if c.OAuth.CodeLength <= 0 {
		return fmt.Errorf("oauth.code_length must be positive")
	}
	if c.OAuth.CodeExpirationMinutes <= 0 {
		return fmt.Errorf("oauth.code_expiration_minutes must be positive")
	}
	if c.Purge.Interval <= 0 {
		return fmt.Errorf("purge.interval must be positive")
	}
	switch c.Database.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	return nil
}

// Default returns a configuration populated with the documented defaults.
// Tests use it as a baseline.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, ReadTimeout: 15, WriteTimeout: 15},
		Database: DatabaseConfig{
			Driver: "memory",
			Path:   "identra.db",
		},
		OAuth: OAuthConfig{
			CodeLength:                    constants.DefaultCodeLength,
			SecretLength:                  constants.DefaultSecretLength,
			RefreshTokenLength:            constants.DefaultRefreshTokenLength,
			AccessTokenExpirationMinutes:  constants.DefaultAccessTokenExpirationMinutes,
			RefreshTokenExpirationMinutes: constants.DefaultRefreshTokenExpirationMinutes,
			CodeExpirationMinutes:         constants.DefaultCodeExpirationMinutes,
			Issuer:                        "identra",
		},
		Password: PasswordConfig{MinLength: constants.DefaultMinPasswordLength},
		TOTP: TOTPConfig{
			SecretLength:     constants.DefaultTOTPSecretLength,
			ToleranceMinutes: constants.DefaultTOTPToleranceMinutes,
			PixelsPerModule:  constants.DefaultTOTPPixelsPerModule,
			Issuer:           "Identra",
		},
		Purge: PurgeConfig{Interval: constants.DefaultPurgeInterval},
		Log:   LogConfig{Level: "info", Format: "json"},
	}
}
