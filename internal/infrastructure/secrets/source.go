// Package secrets provides the signing-secret sources: a static source fed
// from configuration and a Vault-backed source for deployments that rotate
// keys centrally. Both return the ordered trusted list: primary first,
// previous second.
package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/domain/service"
	"github.com/identra/identra/pkg/errors"
	"github.com/identra/identra/pkg/logger"
)

// ================================================================================
// Static Source
// ================================================================================

type staticSource struct {
	secrets []string
}

var _ service.SigningSecretSource = (*staticSource)(nil)

// NewStaticSource builds a source from the configured primary and previous
// secrets. An empty previous secret is omitted from the trusted list.
func NewStaticSource(primary, previous string) service.SigningSecretSource {
	secrets := []string{primary}
	if previous != "" {
		secrets = append(secrets, previous)
	}
	return &staticSource{secrets: secrets}
}

func (s *staticSource) Secrets(context.Context) ([]string, error) {
	return s.secrets, nil
}

// ================================================================================
// Vault Source
// ================================================================================

// vaultSource reads primary/previous signing secrets from a KVv2 mount and
// caches them briefly so token issuance does not hit Vault on every request.
type vaultSource struct {
	client    *vault.Client
	mount     string
	secretKey string
	log       logger.Logger

	mu        sync.Mutex
	cached    []string
	fetchedAt time.Time
	ttl       time.Duration
}

var _ service.SigningSecretSource = (*vaultSource)(nil)

// NewVaultSource connects to Vault using the configured address and token.
func NewVaultSource(cfg config.VaultConfig, log logger.Logger) (service.SigningSecretSource, error) {
	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.Address

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &vaultSource{
		client:    client,
		mount:     cfg.MountPath,
		secretKey: cfg.SecretKey,
		log:       log.WithComponent("vault_secrets"),
		ttl:       time.Minute,
	}, nil
}

func (s *vaultSource) Secrets(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.fetchedAt) < s.ttl {
		return s.cached, nil
	}

	kv, err := s.client.KVv2(s.mount).Get(ctx, s.secretKey)
	if err != nil {
		// Serve the stale list rather than failing issuance outright.
		if s.cached != nil {
			s.log.Warn(ctx, "vault fetch failed, serving cached signing secrets", logger.Fields{"error": err.Error()})
			return s.cached, nil
		}
		return nil, errors.ErrDataAccess(err)
	}

	primary, _ := kv.Data["primary"].(string)
	previous, _ := kv.Data["previous"].(string)
	if primary == "" {
		return nil, errors.ErrInternal(fmt.Errorf("vault secret %q has no primary signing secret", s.secretKey))
	}

	list := []string{primary}
	if previous != "" {
		list = append(list, previous)
	}
	s.cached = list
	s.fetchedAt = time.Now()
	return list, nil
}
