package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/domain/sessionModel"
)

var _ sessionModel.SessionStore = (*InMemorySessionStore)(nil)

type sessionRecord struct {
	session sessionModel.Session
	history []commonModels.HistoryEntry
}

// InMemorySessionStore keeps sessions for the life of the process.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]*sessionRecord)}
}

func (store *InMemorySessionStore) CreateSession(ctx context.Context, id string) (sessionModel.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if rec, ok := store.sessions[id]; ok {
		return rec.session, nil
	}
	rec := &sessionRecord{session: sessionModel.Session{Id: id, CreatedAt: time.Now()}}
	store.sessions[id] = rec
	inMemLogger.WithTrace(ctx).Debug("Session created", "sessionId", id)
	return rec.session, nil
}

func (store *InMemorySessionStore) GetSession(_ context.Context, id string) (sessionModel.Session, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	rec, ok := store.sessions[id]
	if !ok {
		return sessionModel.Session{}, false
	}
	return rec.session, true
}

func (store *InMemorySessionStore) IncrementDocuments(_ context.Context, id string) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	rec, ok := store.sessions[id]
	if !ok {
		return 0, commonModels.ErrSessionNotFound
	}
	rec.session.DocumentCount++
	return rec.session.DocumentCount, nil
}

func (store *InMemorySessionStore) ResetDocuments(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	rec, ok := store.sessions[id]
	if !ok {
		return commonModels.ErrSessionNotFound
	}
	rec.session.DocumentCount = 0
	return nil
}

func (store *InMemorySessionStore) AppendHistory(_ context.Context, id string, entry commonModels.HistoryEntry) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	rec, ok := store.sessions[id]
	if !ok {
		return commonModels.ErrSessionNotFound
	}
	rec.history = append(rec.history, entry)
	return nil
}

func (store *InMemorySessionStore) History(_ context.Context, id string) ([]commonModels.HistoryEntry, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	rec, ok := store.sessions[id]
	if !ok {
		return nil, commonModels.ErrSessionNotFound
	}
	return append([]commonModels.HistoryEntry(nil), rec.history...), nil
}

func (store *InMemorySessionStore) DeleteSession(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, id)
	return nil
}
