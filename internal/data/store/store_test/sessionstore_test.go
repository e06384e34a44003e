package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/DocRAG/internal/data/redisStore"
	"github.com/akolanti/DocRAG/internal/data/store"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/domain/sessionModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func sessionStores(t *testing.T) map[string]sessionModel.SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]sessionModel.SessionStore{
		"redis":    store.NewRedisSessionStore(redisStore.NewStore(client), time.Hour),
		"inmemory": store.InitInMemorySessionStore(),
	}
}

func TestSessionStore_Lifecycle(t *testing.T) {
	for name, sessions := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, ok := sessions.GetSession(ctx, "s1"); ok {
				t.Fatal("session should not exist yet")
			}
			created, err := sessions.CreateSession(ctx, "s1")
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}
			if created.Id != "s1" || created.DocumentCount != 0 {
				t.Errorf("unexpected session %+v", created)
			}

			for want := 1; want <= 3; want++ {
				n, err := sessions.IncrementDocuments(ctx, "s1")
				if err != nil || n != want {
					t.Fatalf("IncrementDocuments = %d, %v; want %d", n, err, want)
				}
			}

			again, err := sessions.CreateSession(ctx, "s1")
			if err != nil || again.DocumentCount != 3 {
				t.Errorf("creating an existing session should keep it, got %+v %v", again, err)
			}

			if err := sessions.ResetDocuments(ctx, "s1"); err != nil {
				t.Fatal(err)
			}
			if got, _ := sessions.GetSession(ctx, "s1"); got.DocumentCount != 0 {
				t.Errorf("expected count reset, got %d", got.DocumentCount)
			}

			first := commonModels.HistoryEntry{Query: "q1", Answer: "a1"}
			second := commonModels.HistoryEntry{Query: "q2", Answer: "a2", UsedFallback: true}
			if err := sessions.AppendHistory(ctx, "s1", first); err != nil {
				t.Fatal(err)
			}
			if err := sessions.AppendHistory(ctx, "s1", second); err != nil {
				t.Fatal(err)
			}
			history, err := sessions.History(ctx, "s1")
			if err != nil {
				t.Fatal(err)
			}
			if len(history) != 2 || history[0].Query != "q1" || !history[1].UsedFallback {
				t.Errorf("unexpected history %+v", history)
			}

			if err := sessions.DeleteSession(ctx, "s1"); err != nil {
				t.Fatal(err)
			}
			if _, ok := sessions.GetSession(ctx, "s1"); ok {
				t.Error("session should be gone")
			}
			if err := sessions.DeleteSession(ctx, "s1"); err != nil {
				t.Errorf("deleting twice should be fine, got %v", err)
			}
		})
	}
}

func TestSessionStore_UnknownSession(t *testing.T) {
	for name, sessions := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := sessions.IncrementDocuments(ctx, "ghost"); !errors.Is(err, commonModels.ErrSessionNotFound) {
				t.Errorf("IncrementDocuments: %v", err)
			}
			if err := sessions.ResetDocuments(ctx, "ghost"); !errors.Is(err, commonModels.ErrSessionNotFound) {
				t.Errorf("ResetDocuments: %v", err)
			}
			if err := sessions.AppendHistory(ctx, "ghost", commonModels.HistoryEntry{}); !errors.Is(err, commonModels.ErrSessionNotFound) {
				t.Errorf("AppendHistory: %v", err)
			}
			if _, err := sessions.History(ctx, "ghost"); !errors.Is(err, commonModels.ErrSessionNotFound) {
				t.Errorf("History: %v", err)
			}
		})
	}
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	sessions := store.NewRedisSessionStore(redisStore.NewStore(client), time.Minute)
	ctx := context.Background()

	if _, err := sessions.CreateSession(ctx, "short"); err != nil {
		t.Fatal(err)
	}
	if err := sessions.AppendHistory(ctx, "short", commonModels.HistoryEntry{Query: "q"}); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("session:short:history"); ttl != time.Minute {
		t.Errorf("history ttl = %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := sessions.GetSession(ctx, "short"); ok {
		t.Error("session should have expired")
	}
}
