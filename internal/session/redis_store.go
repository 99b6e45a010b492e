package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient dials redis and verifies the connection.
func NewRedisClient(addr, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Username:     username,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Store with one redis key per session.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
	}
}

type sessionRecord struct {
	Role  string `json:"role"`
	Token string `json:"token,omitempty"`
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Current reads the ambient session. A missing key is not an error: it is the
// anonymous session.
func (s *redisStore) Current(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Anonymous(), nil
	}

	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Anonymous(), nil
	}
	if err != nil {
		return Anonymous(), fmt.Errorf("read session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Anonymous(), fmt.Errorf("decode session: %w", err)
	}

	return Session{
		Role:  ParseRole(rec.Role),
		Token: rec.Token,
	}, nil
}

func (s *redisStore) Put(ctx context.Context, sessionID string, sess Session) error {
	raw, err := json.Marshal(sessionRecord{
		Role:  string(sess.Role),
		Token: sess.Token,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
