package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/internal/domain/wizard"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
)

const keyPrefix = "quote-wizard"

// RedisStore keeps drafts as JSON values with a sliding TTL so several API
// instances share wizard state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.DraftRepository = (*RedisStore)(nil)

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func draftKeyString(tenantID, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, tenantID, id)
}

func commitKeyString(tenantID, id uuid.UUID) string {
	return draftKeyString(tenantID, id) + ":commit"
}

func (s *RedisStore) Save(ctx context.Context, draft *wizard.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKeyString(draft.TenantID, draft.ID), data, s.ttl).Err(); err != nil {
		return apperror.NewTransientStorageError(err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, tenantID, id uuid.UUID) (*wizard.Draft, error) {
	data, err := s.client.Get(ctx, draftKeyString(tenantID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewTransientStorageError(err)
	}

	var draft wizard.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (s *RedisStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.client.Del(ctx, draftKeyString(tenantID, id), commitKeyString(tenantID, id)).Err()
	if err != nil {
		return apperror.NewTransientStorageError(err)
	}
	return nil
}

func (s *RedisStore) AcquireCommit(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	ok, err := s.client.SetNX(ctx, commitKeyString(tenantID, id), time.Now().Unix(), commitTTL).Result()
	if err != nil {
		return false, apperror.NewTransientStorageError(err)
	}
	return ok, nil
}

func (s *RedisStore) ReleaseCommit(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.client.Del(ctx, commitKeyString(tenantID, id)).Err(); err != nil {
		return apperror.NewTransientStorageError(err)
	}
	return nil
}
