package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/logger"
)

// Load reads configuration from file, environment and defaults, in that
// order of precedence (env wins). A missing config file is not an error.
// Subscribers receive each validated snapshot after a config file change;
// the struct returned here is never mutated afterwards.
func Load(log logger.Logger, onReload ...func(Config)) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/identra/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("IDENTRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v.OnConfigChange(reloadHandler(v, log, onReload))
	v.WatchConfig()

	return &cfg, nil
}

// reloadHandler re-reads the watched file into a fresh snapshot and hands it
// to the subscribers. Invalid edits are dropped; callers keep the config they
// started with, so a bad edit cannot take the process down.
func reloadHandler(v *viper.Viper, log logger.Logger, subscribers []func(Config)) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			log.Warn(context.Background(), "ignoring config reload: unmarshal failed",
				logger.Fields{"file": e.Name, "error": err.Error()})
			return
		}
		if err := next.Validate(); err != nil {
			log.Warn(context.Background(), "ignoring config reload: validation failed",
				logger.Fields{"file": e.Name, "error": err.Error()})
			return
		}
		for _, notify := range subscribers {
			notify(next)
		}
		log.Info(context.Background(), "configuration reloaded", logger.Fields{"file": e.Name})
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.path", "identra.db")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("oauth.code_length", constants.DefaultCodeLength)
	v.SetDefault("oauth.secret_length", constants.DefaultSecretLength)
	v.SetDefault("oauth.refresh_token_length", constants.DefaultRefreshTokenLength)
	v.SetDefault("oauth.access_token_expiration_minutes", constants.DefaultAccessTokenExpirationMinutes)
	v.SetDefault("oauth.refresh_token_expiration_minutes", constants.DefaultRefreshTokenExpirationMinutes)
	v.SetDefault("oauth.code_expiration_minutes", constants.DefaultCodeExpirationMinutes)
	v.SetDefault("oauth.issuer", "identra")

	v.SetDefault("password.min_length", constants.DefaultMinPasswordLength)

	v.SetDefault("totp.secret_length", constants.DefaultTOTPSecretLength)
	v.SetDefault("totp.tolerance_minutes", constants.DefaultTOTPToleranceMinutes)
	v.SetDefault("totp.pixels_per_module", constants.DefaultTOTPPixelsPerModule)
	v.SetDefault("totp.issuer", "Identra")

	v.SetDefault("purge.interval", constants.DefaultPurgeInterval)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("audit.topic", "identra.audit")
	v.SetDefault("vault.mount_path", "secret")
	v.SetDefault("vault.secret_key", "identra/signing")
	v.SetDefault("tracing.service_name", "identra")
}
