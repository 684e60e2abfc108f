package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"partnerdash/internal/identity/models"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

type sessionJSON struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Device      string `json:"device"`
	CreatedAt   int64  `json:"created_at"` // Unix nano
	ExpiresAt   int64  `json:"expires_at"` // Unix nano
	MFAVerified bool   `json:"mfa_verified"`
}

func sessionToJSON(s *models.Session) *sessionJSON {
	return &sessionJSON{
		ID:          s.ID.String(),
		UserID:      s.UserID.String(),
		Email:       s.Email,
		Device:      s.Device,
		CreatedAt:   s.CreatedAt.UnixNano(),
		ExpiresAt:   s.ExpiresAt.UnixNano(),
		MFAVerified: s.MFAVerified,
	}
}

func sessionFromJSON(j *sessionJSON) (*models.Session, error) {
	sessionID, err := uuid.Parse(j.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	userID, err := uuid.Parse(j.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &models.Session{
		ID:          id.SessionID(sessionID),
		UserID:      id.UserID(userID),
		Email:       j.Email,
		Device:      j.Device,
		CreatedAt:   time.Unix(0, j.CreatedAt),
		ExpiresAt:   time.Unix(0, j.ExpiresAt),
		MFAVerified: j.MFAVerified,
	}, nil
}

// RedisStore shares sessions between server instances. Keys expire with the session.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func userSessionsKey(userID id.UserID) string {
	return userSessionKeyPrefix + userID.String()
}

func decodeSession(data string) (*models.Session, error) {
	var j sessionJSON
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return sessionFromJSON(&j)
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	data, err := json.Marshal(sessionToJSON(session))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	userKey := userSessionsKey(session.UserID)
	pipe := s.client.TxPipeline()
	set := pipe.SetNX(ctx, sessionKey(session.ID), data, ttl)
	pipe.SAdd(ctx, userKey, session.ID.String())
	// The index outlives the newest session it references.
	pipe.Expire(ctx, userKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !set.Val() {
		return fmt.Errorf("session %s: %w", session.ID, sentinel.ErrAlreadyExists)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(data)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	session, err := s.FindByID(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, userSessionsKey(session.UserID), sessionID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByUser removes every session of the user and reports how many existed.
func (s *RedisStore) DeleteByUser(ctx context.Context, userID id.UserID) (int, error) {
	userKey := userSessionsKey(userID)
	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}

	pipe := s.client.TxPipeline()
	dels := make([]*redis.IntCmd, 0, len(ids))
	for _, sid := range ids {
		dels = append(dels, pipe.Del(ctx, sessionKeyPrefix+sid))
	}
	pipe.Del(ctx, userKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}

	removed := 0
	for _, cmd := range dels {
		removed += int(cmd.Val())
	}
	return removed, nil
}

// SetMFAVerified flips the flag with an optimistic transaction so a concurrent
// sign-out is never resurrected.
func (s *RedisStore) SetMFAVerified(ctx context.Context, sessionID id.SessionID) error {
	key := sessionKey(sessionID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
		}
		if err != nil {
			return err
		}
		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		session.MFAVerified = true
		updated, err := json.Marshal(sessionToJSON(session))
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, updated, redis.SetArgs{KeepTTL: true, Mode: "XX"})
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("session %s: %w", sessionID, sentinel.ErrStale)
	}
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("mark session verified: %w", err)
	}
	return err
}
