// Package redisstore implements the authorization-code repository on redis.
// The single DEL round-trip gives the exactly-once redemption guarantee
// without any server-side locking.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/internal/domain/repository"
	"github.com/identra/identra/pkg/errors"
)

const codeKeyPrefix = "identra:authcode:"

// backstopSlack keeps keys alive well past their logical expiry so that a
// redemption attempt after expiry still observes the code and reports Expired
// rather than NotFound. The purge sweep, not the key TTL, owns cleanup.
const backstopSlack = time.Hour

// CodeRepository stores authorization codes as JSON values with a TTL backstop.
type CodeRepository struct {
	client *goredis.Client
	// lifetime is the logical code lifetime; the key TTL adds backstopSlack.
	lifetime time.Duration
}

var _ repository.AuthorizationCodeRepository = (*CodeRepository)(nil)

func NewCodeRepository(client *goredis.Client, lifetime time.Duration) *CodeRepository {
	return &CodeRepository{client: client, lifetime: lifetime}
}

func (r *CodeRepository) Add(ctx context.Context, code *models.AuthorizationCode) error {
	payload, err := json.Marshal(code)
	if err != nil {
		return errors.ErrInternal(err)
	}
	if err := r.client.Set(ctx, codeKeyPrefix+code.Code, payload, r.lifetime+backstopSlack).Err(); err != nil {
		return errors.ErrDataAccess(err)
	}
	return nil
}

func (r *CodeRepository) GetByCode(ctx context.Context, code string) (*models.AuthorizationCode, error) {
	payload, err := r.client.Get(ctx, codeKeyPrefix+code).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, errors.ErrNotFound("authorization code")
		}
		return nil, errors.ErrDataAccess(err)
	}
	var stored models.AuthorizationCode
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, errors.ErrInternal(err)
	}
	return &stored, nil
}

func (r *CodeRepository) Delete(ctx context.Context, code string) error {
	deleted, err := r.client.Del(ctx, codeKeyPrefix+code).Result()
	if err != nil {
		return errors.ErrDataAccess(err)
	}
	if deleted == 0 {
		return errors.ErrNotFound("authorization code")
	}
	return nil
}

func (r *CodeRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	iter := r.client.Scan(ctx, 0, codeKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == goredis.Nil {
				continue
			}
			return deleted, errors.ErrDataAccess(err)
		}
		var stored models.AuthorizationCode
		if err := json.Unmarshal(payload, &stored); err != nil {
			continue
		}
		if stored.CreatedAt.Before(cutoff) {
			n, err := r.client.Del(ctx, key).Result()
			if err != nil {
				return deleted, errors.ErrDataAccess(err)
			}
			deleted += n
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, errors.ErrDataAccess(err)
	}
	return deleted, nil
}
