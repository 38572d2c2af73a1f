package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	appservice "github.com/identra/identra/internal/application/service"
	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/domain/repository"
	domainservice "github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/internal/infrastructure/audit"
	"github.com/identra/identra/internal/infrastructure/authz"
	"github.com/identra/identra/internal/infrastructure/monitoring"
	"github.com/identra/identra/internal/infrastructure/persistence/gormstore"
	"github.com/identra/identra/internal/infrastructure/persistence/memory"
	"github.com/identra/identra/internal/infrastructure/persistence/redisstore"
	"github.com/identra/identra/internal/infrastructure/scheduler"
	"github.com/identra/identra/internal/infrastructure/secrets"
	"github.com/identra/identra/internal/interfaces/http/handlers"
	"github.com/identra/identra/internal/interfaces/http/middleware"
	"github.com/identra/identra/internal/interfaces/http/router"
	"github.com/identra/identra/pkg/logger"
)

// repos bundles the repository set for one storage backend.
type repos struct {
	users  repository.UserRepository
	apps   repository.ApplicationRepository
	roles  repository.ApplicationRoleRepository
	scopes repository.ScopeRepository
	claims repository.ClaimRepository
	codes  repository.AuthorizationCodeRepository
	tokens repository.TokenRepository
}

func main() {
	startupLog := monitoring.NewZapLogger(config.LogConfig{Level: "info", Format: "console"}, monitoring.NewLogLevel())

	// The log level follows config file edits at runtime.
	logLevel := monitoring.NewLogLevel()
	cfg, err := config.Load(startupLog, func(next config.Config) {
		logLevel.SetLevel(monitoring.ParseLevel(next.Log.Level))
	})
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog := monitoring.NewZapLogger(cfg.Log, logLevel)
	ctx := context.Background()

	tracing, err := monitoring.NewTracingManager(cfg.Tracing, appLog)
	if err != nil {
		appLog.Fatal(ctx, "failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			appLog.Warn(shutdownCtx, "tracing shutdown failed", logger.Fields{"error": err.Error()})
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	store, err := buildRepositories(cfg, appLog)
	if err != nil {
		appLog.Fatal(ctx, "failed to initialize storage", err)
	}

	// Signing secrets come from Vault when enabled, static config otherwise.
	var secretSource domainservice.SigningSecretSource
	if cfg.Vault.Enabled {
		secretSource, err = secrets.NewVaultSource(cfg.Vault, appLog)
		if err != nil {
			appLog.Fatal(ctx, "failed to initialize vault secret source", err)
		}
	} else {
		secretSource = secrets.NewStaticSource(cfg.OAuth.SigningSecret, cfg.OAuth.PreviousSigningSecret)
	}

	auditSink := audit.NewNoopPublisher()
	if cfg.Audit.Enabled {
		publisher := audit.NewKafkaPublisher(cfg.Audit, appLog)
		defer func() {
			if err := publisher.Close(); err != nil {
				appLog.Warn(ctx, "audit publisher close failed", logger.Fields{"error": err.Error()})
			}
		}()
		auditSink = publisher
	}

	random := domainservice.NewSecretService()
	tokenService := domainservice.NewTokenDomainService(store.tokens, random, secretSource, cfg.OAuth, appLog, metrics)
	codeService := domainservice.NewAuthCodeService(store.codes, store.users, store.apps, random, cfg.OAuth, appLog, metrics)

	app := appservice.NewAuthAppService(appservice.Deps{
		Users:      store.users,
		Apps:       store.apps,
		Roles:      store.roles,
		Scopes:     store.scopes,
		Codes:      codeService,
		Tokens:     tokenService,
		Claims:     domainservice.NewClaimsService(),
		TOTP:       domainservice.NewTOTPService(cfg.TOTP),
		Passwords:  domainservice.NewPasswordService(cfg.Password),
		Random:     random,
		Authorizer: authz.NewStaticAuthorizer(authz.DefaultTable()),
		Metrics:    metrics,
		AuditSink:  auditSink,
		Tracer:     tracing.Tracer(),
		Log:        appLog,
		Config:     *cfg,
	})

	purger := scheduler.NewPurgeScheduler(codeService, cfg.Purge.Interval, appLog)

	srv := router.New(
		cfg,
		appLog,
		handlers.NewHealthHandler(app, appLog),
		handlers.NewOAuthHandler(app),
		handlers.NewApplicationHandler(app),
		handlers.NewTwoFactorHandler(app),
		middleware.BearerAuth(tokenService, store.users, appLog),
		middleware.RequestID(),
		registry,
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purger.Start(runCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-runCtx.Done():
		appLog.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLog.Fatal(ctx, "http server failed", err)
		}
		return
	}

	purger.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		appLog.Error(shutdownCtx, "http server shutdown failed", err)
	}
	appLog.Info(ctx, "server stopped")
}

// buildRepositories wires the repository set for the configured backend. The
// authorization-code repository is switched to redis independently of the
// primary store when redis is enabled.
func buildRepositories(cfg *config.Config, log logger.Logger) (*repos, error) {
	var r *repos

	switch cfg.Database.Driver {
	case "memory":
		claims := memory.NewClaimRepository()
		r = &repos{
			users:  memory.NewUserRepository().WithClaims(claims),
			apps:   memory.NewApplicationRepository(),
			roles:  memory.NewRoleRepository(),
			scopes: memory.NewScopeRepository(),
			claims: claims,
			codes:  memory.NewCodeRepository(),
			tokens: memory.NewTokenRepository(),
		}
	default:
		db, err := gormstore.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		r = &repos{
			users:  gormstore.NewUserRepository(db),
			apps:   gormstore.NewApplicationRepository(db),
			roles:  gormstore.NewRoleRepository(db),
			scopes: gormstore.NewScopeRepository(db),
			claims: gormstore.NewClaimRepository(db),
			codes:  gormstore.NewCodeRepository(db),
			tokens: gormstore.NewTokenRepository(db),
		}
	}

	if cfg.Redis.Enabled {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, err
		}
		r.codes = redisstore.NewCodeRepository(client, cfg.OAuth.CodeExpiration())
		log.Info(context.Background(), "authorization codes stored in redis",
			logger.Fields{"address": cfg.Redis.Address})
	}

	return r, nil
}
