package sessionModel

import (
	"context"
	"time"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

// Session is the per-user conversation: how many documents it has ingested and what it asked.
type Session struct {
	Id            string    `json:"session_id"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type SessionStore interface {
	CreateSession(ctx context.Context, id string) (Session, error)
	GetSession(ctx context.Context, id string) (Session, bool)
	IncrementDocuments(ctx context.Context, id string) (int, error)
	ResetDocuments(ctx context.Context, id string) error
	AppendHistory(ctx context.Context, id string, entry commonModels.HistoryEntry) error
	History(ctx context.Context, id string) ([]commonModels.HistoryEntry, error)
	DeleteSession(ctx context.Context, id string) error
}
