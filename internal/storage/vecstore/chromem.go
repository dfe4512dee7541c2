package vecstore

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"

	"github.com/sandevgo/recall/internal/core"
)

const collectionName = "memories"

// Chromem backs the Store interface with chromem-go, an embedded pure-Go
// vector database. A single collection holds all records; ownership and
// session scoping live in the document metadata.
type Chromem struct {
	db         *chromem.DB
	col        *chromem.Collection
	dimensions int
}

// NewChromem opens (or creates) the store. An empty path keeps everything
// in memory, which is what the tests use.
func NewChromem(path string, dimensions int) (*Chromem, error) {
	var db *chromem.DB
	var err error

	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, goerr.Wrap(core.ErrStoreUnavailable, "failed to open vector store", goerr.V("cause", err))
		}
	}

	// Embeddings are always provided by the caller, so no embedding func
	// is attached to the collection.
	col, err := db.GetOrCreateCollection(collectionName, nil, func(_ context.Context, _ string) ([]float32, error) {
		return nil, goerr.New("collection has no embedding function, embeddings must be provided")
	})
	if err != nil {
		return nil, goerr.Wrap(core.ErrStoreUnavailable, "failed to create collection", goerr.V("cause", err))
	}

	return &Chromem{db: db, col: col, dimensions: dimensions}, nil
}

func (s *Chromem) Upsert(ctx context.Context, id, content string, vector []float32, attrs map[string]string) error {
	doc := chromem.Document{
		ID:        id,
		Content:   content,
		Embedding: vector,
		Metadata:  attrs,
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return goerr.Wrap(core.ErrStoreUnavailable, "failed to add document", goerr.V("cause", err))
	}
	return nil
}

func (s *Chromem) Query(ctx context.Context, vector []float32, where map[string]string, topK int) ([]Match, error) {
	results, err := s.queryEmbedding(ctx, vector, where, topK)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			ID:         r.ID,
			Content:    r.Content,
			Attributes: r.Metadata,
			Similarity: float64(r.Similarity),
		})
	}
	return matches, nil
}

// List enumerates matching documents with a neutral query vector. chromem
// has no scan API, so enumeration rides on the same query path; the
// similarity on returned matches is meaningless and zeroed out.
func (s *Chromem) List(ctx context.Context, where map[string]string, limit int) ([]Match, error) {
	matches, err := s.Query(ctx, s.neutralVector(), where, limit)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		matches[i].Similarity = 0
	}
	return matches, nil
}

func (s *Chromem) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	before := s.col.Count()
	if err := s.col.Delete(ctx, nil, nil, ids...); err != nil {
		return 0, goerr.Wrap(core.ErrStoreUnavailable, "failed to delete documents", goerr.V("cause", err))
	}
	return before - s.col.Count(), nil
}

func (s *Chromem) Count(ctx context.Context) (int, error) {
	return s.col.Count(), nil
}

// queryEmbedding retries with smaller limits because chromem rejects
// nResults larger than the collection size.
func (s *Chromem) queryEmbedding(ctx context.Context, vector []float32, where map[string]string, topK int) ([]chromem.Result, error) {
	count := s.col.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	for limit := topK; limit >= 1; limit-- {
		results, err := s.col.QueryEmbedding(ctx, vector, limit, where, nil)
		if err == nil {
			return results, nil
		}
		if isInsufficientDocsError(err) {
			continue
		}
		return nil, goerr.Wrap(core.ErrStoreUnavailable, "vector query failed", goerr.V("cause", err))
	}
	return nil, nil
}

func (s *Chromem) neutralVector() []float32 {
	vec := make([]float32, s.dimensions)
	vec[0] = 1
	return vec
}

func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
