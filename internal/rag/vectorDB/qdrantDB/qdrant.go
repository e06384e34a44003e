package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ vectorDB.Store = (*Store)(nil)

const (
	payloadChunkId = "chunk_id"
	payloadText    = "text"
	payloadSeq     = "seq"
)

type Config struct {
	Host       string
	Port       int
	UseTLS     bool
	Collection string
}

// Store keeps chunks in a qdrant collection. The collection is created on the
// first upsert, sized to that batch's vectors.
type Store struct {
	client     *qdrant.Client
	collection string
	logger     *logger_i.Logger

	mu        sync.Mutex
	dimension uint64
	seq       seqCounter
}

// seqCounter hands out insertion sequence numbers. It only moves forward, so
// an overwritten point never shares its sequence with a later insert.
type seqCounter struct {
	next   int64
	loaded bool
}

func (c *seqCounter) observe(seqs ...int64) {
	for _, seq := range seqs {
		if seq >= c.next {
			c.next = seq + 1
		}
	}
	c.loaded = true
}

func (c *seqCounter) reserve(n int) int64 {
	start := c.next
	c.next += int64(n)
	return start
}

func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		return nil, errors.New("empty collection name")
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		UseTLS:   cfg.UseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if _, err := client.HealthCheck(checkCtx); err != nil {
		_ = client.Close()
		return nil, classify(fmt.Errorf("qdrant health check: %w", err))
	}

	s := &Store{client: client, collection: cfg.Collection, logger: logger_i.NewLogger("Qdrant")}
	s.logger.Info("Connected to qdrant", "host", cfg.Host, "port", cfg.Port, "collection", cfg.Collection)
	return s, nil
}

func (s *Store) ensureCollection(ctx context.Context, size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 {
		if s.dimension != size {
			return fmt.Errorf("%w: got %d want %d", vectorDB.ErrDimensionMismatch, size, s.dimension)
		}
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return classify(err)
	}
	if exists {
		info, err := s.client.GetCollectionInfo(ctx, s.collection)
		if err != nil {
			return classify(err)
		}
		if existing := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize(); existing != 0 && existing != size {
			return fmt.Errorf("%w: got %d want %d", vectorDB.ErrDimensionMismatch, size, existing)
		}
		s.dimension = size
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     size,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return classify(fmt.Errorf("could not create collection %s: %w", s.collection, err))
	}
	s.dimension = size
	return nil
}

func (s *Store) Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, uint64(len(vectors[0]))); err != nil {
		return err
	}

	for _, v := range vectors {
		if uint64(len(v)) != s.dimension {
			return fmt.Errorf("%w: got %d want %d", vectorDB.ErrDimensionMismatch, len(v), s.dimension)
		}
	}

	start, err := s.reserveSeq(ctx, len(chunks))
	if err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointId(chunk.ChunkId)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadChunkId: chunk.ChunkId,
				payloadText:    chunk.Text,
				payloadSeq:     start + int64(i),
			}),
		}
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return classify(fmt.Errorf("qdrant upsert failed: %w", err))
	}
	return nil
}

// reserveSeq continues from the highest sequence already stored, read once per process.
func (s *Store) reserveSeq(ctx context.Context, n int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seq.loaded {
		seqs, err := s.storedSeqs(ctx)
		if err != nil {
			return 0, err
		}
		s.seq.observe(seqs...)
	}
	return s.seq.reserve(n), nil
}

func (s *Store) storedSeqs(ctx context.Context) ([]int64, error) {
	n, err := s.Count(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(n)),
		WithPayload:    qdrant.NewWithPayloadInclude(payloadSeq),
	})
	if err != nil {
		return nil, classify(err)
	}
	seqs := make([]int64, len(points))
	for i, p := range points {
		seqs[i] = p.Payload[payloadSeq].GetIntegerValue()
	}
	return seqs, nil
}

func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]vectorDB.Match, error) {
	if k <= 0 {
		return nil, nil
	}
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, classify(err)
	}
	if !exists {
		return nil, nil
	}

	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		s.logger.WithTrace(ctx).Error("Error querying Qdrant", "error", err)
		return nil, classify(err)
	}

	type ranked struct {
		match vectorDB.Match
		seq   int64
	}
	out := make([]ranked, 0, len(hits))
	for _, hit := range hits {
		out = append(out, ranked{
			match: vectorDB.Match{
				ChunkId: hit.Payload[payloadChunkId].GetStringValue(),
				Text:    hit.Payload[payloadText].GetStringValue(),
				Score:   hit.Score,
			},
			seq: hit.Payload[payloadSeq].GetIntegerValue(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].match.Score != out[j].match.Score {
			return out[i].match.Score > out[j].match.Score
		}
		return out[i].seq < out[j].seq
	})

	matches := make([]vectorDB.Match, len(out))
	for i, r := range out {
		matches[i] = r.match
	}
	return matches, nil
}

func (s *Store) Texts(ctx context.Context) ([]string, error) {
	n, err := s.Count(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(n)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, classify(err)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Payload[payloadSeq].GetIntegerValue() < points[j].Payload[payloadSeq].GetIntegerValue()
	})
	texts := make([]string, len(points))
	for i, p := range points {
		texts[i] = p.Payload[payloadText].GetStringValue()
	}
	return texts, nil
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return classify(err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return classify(fmt.Errorf("deleting collection %s: %w", s.collection, err))
		}
	}
	s.dimension = 0
	s.seq = seqCounter{loaded: true}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return 0, classify(err)
	}
	if !exists {
		return 0, nil
	}
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, classify(err)
	}
	return int(n), nil
}

func (s *Store) Close() error {
	s.logger.Info("Shutting down Qdrant")
	return s.client.Close()
}

// pointId derives a stable uuid so re-inserting a chunk id overwrites its point.
func pointId(chunkId string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkId)).String()
}

// classify marks connectivity failures as index unavailability.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", commonModels.ErrIndexUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", commonModels.ErrIndexUnavailable, err)
	}
	return err
}
