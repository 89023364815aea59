package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lingoplatform/admin-backend/pkg/serializer"
	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLAuditLog = 10 * time.Minute // 감사 로그 (불변)
	TTLDefault  = 5 * time.Minute
)

// 캐시 키 접두사
const (
	PrefixAuditLog = "audit_log:"
)

// ErrMiss is returned by Get when the key is absent or the cache is unavailable
var ErrMiss = errors.New("cache miss")

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 캐시 서비스 생성. client가 nil이면 모든 연산이 no-op
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping Redis 연결 테스트
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}

	return serializer.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}

	data, err := serializer.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete 캐시 키 삭제
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// AuditLogKey 감사 로그 캐시 키
func AuditLogKey(id uint64) string {
	return fmt.Sprintf("%s%d", PrefixAuditLog, id)
}
