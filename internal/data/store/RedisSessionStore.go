package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/akolanti/DocRAG/internal/data/redisStore"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/domain/sessionModel"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var _ sessionModel.SessionStore = (*RedisSessionStore)(nil)

const (
	sessionKeyPrefix   = "session:"
	historyKeySuffix   = ":history"
	fieldCreatedAt     = "created_at"
	fieldDocumentCount = "document_count"
)

// RedisSessionStore keeps each session as a hash plus a history list. Every
// write pushes both keys' expiry forward by ttl.
type RedisSessionStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewRedisSessionStore(store *redisStore.Store, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		ttl:    ttl,
		logger: logger_i.NewLogger("session_store"),
	}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }
func historyKey(id string) string { return sessionKeyPrefix + id + historyKeySuffix }

func (s *RedisSessionStore) touch(ctx context.Context, id string) {
	if err := s.store.Expire(ctx, s.ttl, sessionKey(id), historyKey(id)); err != nil {
		s.logger.WithTrace(ctx).Warn("Could not refresh session ttl", "sessionId", id, "error", err)
	}
}

func (s *RedisSessionStore) CreateSession(ctx context.Context, id string) (sessionModel.Session, error) {
	if existing, ok := s.GetSession(ctx, id); ok {
		return existing, nil
	}
	session := sessionModel.Session{Id: id, CreatedAt: time.Now().UTC()}
	err := s.store.HashSet(ctx, sessionKey(id), map[string]interface{}{
		fieldCreatedAt:     session.CreatedAt.Format(time.RFC3339Nano),
		fieldDocumentCount: 0,
	})
	if err != nil {
		return sessionModel.Session{}, fmt.Errorf("creating session: %w", err)
	}
	s.touch(ctx, id)
	s.logger.WithTrace(ctx).Debug("Session created", "sessionId", id)
	return session, nil
}

func (s *RedisSessionStore) GetSession(ctx context.Context, id string) (sessionModel.Session, bool) {
	fields, err := s.store.HashGetAll(ctx, sessionKey(id))
	if err != nil {
		s.logger.WithTrace(ctx).Error("Reading session failed", "sessionId", id, "error", err)
		return sessionModel.Session{}, false
	}
	if len(fields) == 0 {
		return sessionModel.Session{}, false
	}
	session := sessionModel.Session{Id: id}
	session.DocumentCount, _ = strconv.Atoi(fields[fieldDocumentCount])
	session.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	return session, true
}

func (s *RedisSessionStore) exists(ctx context.Context, id string) error {
	ok, err := s.store.Exists(ctx, sessionKey(id))
	if err != nil {
		return err
	}
	if !ok {
		return commonModels.ErrSessionNotFound
	}
	return nil
}

func (s *RedisSessionStore) IncrementDocuments(ctx context.Context, id string) (int, error) {
	if err := s.exists(ctx, id); err != nil {
		return 0, err
	}
	n, err := s.store.HashIncrBy(ctx, sessionKey(id), fieldDocumentCount, 1)
	if err != nil {
		return 0, err
	}
	s.touch(ctx, id)
	return int(n), nil
}

func (s *RedisSessionStore) ResetDocuments(ctx context.Context, id string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	return s.store.HashSet(ctx, sessionKey(id), map[string]interface{}{fieldDocumentCount: 0})
}

func (s *RedisSessionStore) AppendHistory(ctx context.Context, id string, entry commonModels.HistoryEntry) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.store.ListPush(ctx, historyKey(id), data); err != nil {
		return err
	}
	s.touch(ctx, id)
	return nil
}

func (s *RedisSessionStore) History(ctx context.Context, id string) ([]commonModels.HistoryEntry, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	raw, err := s.store.ListGetAll(ctx, historyKey(id))
	if err != nil {
		return nil, err
	}
	entries := make([]commonModels.HistoryEntry, 0, len(raw))
	for _, r := range raw {
		var e commonModels.HistoryEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			s.logger.WithTrace(ctx).Warn("Skipping unreadable history entry", "sessionId", id, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context, id string) error {
	return s.store.Del(ctx, sessionKey(id), historyKey(id))
}
