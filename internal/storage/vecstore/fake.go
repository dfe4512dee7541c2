package vecstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/sandevgo/recall/internal/core"
)

// Fake is an in-memory Store with exact cosine similarity. It exists so
// the engine's filtering and ranking policy can be exercised without a
// real backend; FailNext forces the next calls to fail for degradation
// tests.
type Fake struct {
	mu       sync.RWMutex
	order    []string
	docs     map[string]fakeDoc
	failNext int
}

type fakeDoc struct {
	content string
	vector  []float32
	attrs   map[string]string
}

func NewFake() *Fake {
	return &Fake{docs: make(map[string]fakeDoc)}
}

// FailNext makes the next n store operations return ErrStoreUnavailable.
func (s *Fake) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

func (s *Fake) takeFailure() error {
	if s.failNext > 0 {
		s.failNext--
		return goerr.Wrap(core.ErrStoreUnavailable, "forced failure")
	}
	return nil
}

func (s *Fake) Upsert(ctx context.Context, id, content string, vector []float32, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	if _, exists := s.docs[id]; !exists {
		s.order = append(s.order, id)
	}
	cp := make(map[string]string, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	s.docs[id] = fakeDoc{content: content, vector: vector, attrs: cp}
	return nil
}

func (s *Fake) Query(ctx context.Context, vector []float32, where map[string]string, topK int) ([]Match, error) {
	s.mu.Lock()
	if err := s.takeFailure(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match
	for _, id := range s.order {
		doc := s.docs[id]
		if !matchesWhere(doc.attrs, where) {
			continue
		}
		matches = append(matches, Match{
			ID:         id,
			Content:    doc.content,
			Attributes: doc.attrs,
			Similarity: cosineSimilarity(vector, doc.vector),
		})
	}

	// Stable keeps insertion order for equal similarities, which makes
	// tie-breaking deterministic across runs.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *Fake) List(ctx context.Context, where map[string]string, limit int) ([]Match, error) {
	s.mu.Lock()
	if err := s.takeFailure(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match
	for _, id := range s.order {
		if len(matches) >= limit {
			break
		}
		doc := s.docs[id]
		if !matchesWhere(doc.attrs, where) {
			continue
		}
		matches = append(matches, Match{ID: id, Content: doc.content, Attributes: doc.attrs})
	}
	return matches, nil
}

func (s *Fake) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		if _, ok := s.docs[id]; !ok {
			continue
		}
		delete(s.docs, id)
		deleted++
		for i, ordered := range s.order {
			if ordered == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return deleted, nil
}

func (s *Fake) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return 0, err
	}
	return len(s.docs), nil
}

func matchesWhere(attrs, where map[string]string) bool {
	for k, v := range where {
		if attrs[k] != v {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
