package sqliteDB

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	_ "modernc.org/sqlite"
)

var _ vectorDB.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	chunk_id TEXT NOT NULL UNIQUE,
	text     TEXT NOT NULL,
	vector   BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS store_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

const dimensionKey = "dimension"

// Store persists chunks in one sqlite file per collection. Similarity is
// computed in process over every row.
type Store struct {
	db     *sql.DB
	path   string
	logger *logger_i.Logger
}

// Open creates <dir>/<name>.db if needed.
func Open(dir, name string) (*Store, error) {
	if name == "" {
		return nil, errors.New("empty collection name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	path := filepath.Join(dir, name+".db")

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger_i.NewLogger("sqlite_store")}
	s.logger.Info("Opened vector store", "path", path)
	return s, nil
}

func (s *Store) Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	dim, err := dimensionTx(ctx, tx)
	if err != nil {
		return err
	}
	for _, v := range vectors {
		if dim == 0 {
			dim = len(v)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO store_meta(key, value) VALUES (?, ?)`, dimensionKey, strconv.Itoa(dim)); err != nil {
				return fmt.Errorf("saving dimension: %w", err)
			}
		}
		if len(v) != dim {
			return fmt.Errorf("%w: got %d want %d", vectorDB.ErrDimensionMismatch, len(v), dim)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks(chunk_id, text, vector) VALUES (?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET text = excluded.text, vector = excluded.vector`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ChunkId, c.Text, encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("upserting %s: %w", c.ChunkId, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]vectorDB.Match, error) {
	if k <= 0 {
		return nil, nil
	}
	dim, err := dimensionTx(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return nil, nil
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: got %d want %d", vectorDB.ErrDimensionMismatch, len(vector), dim)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, text, vector FROM chunks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []vectorDB.Match
	for rows.Next() {
		var m vectorDB.Match
		var blob []byte
		if err := rows.Scan(&m.ChunkId, &m.Text, &blob); err != nil {
			return nil, err
		}
		m.Score = vectorDB.CosineSimilarity(vector, decodeVector(blob))
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Store) Texts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT text FROM chunks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS chunks; DROP TABLE IF EXISTS store_meta;`+schema)
	if err != nil {
		return fmt.Errorf("recreating tables: %w", err)
	}
	s.logger.Info("Vector store cleared", "path", s.path)
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func dimensionTx(ctx context.Context, q queryer) (int, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, dimensionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading dimension: %w", err)
	}
	return strconv.Atoi(raw)
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
