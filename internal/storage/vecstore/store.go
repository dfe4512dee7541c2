// Package vecstore abstracts the external vector database behind a narrow
// capability interface so the memory engine's retrieval policy can be
// tested against an in-memory fake.
package vecstore

import "context"

// Match is one scored document returned by a query.
type Match struct {
	ID         string
	Content    string
	Attributes map[string]string
	Similarity float64
}

// Store is the capability surface the memory engine needs from a vector
// database. Filters are exact-match attribute predicates; anything richer
// (negation, enumeration-then-delete) is composed by the caller.
type Store interface {
	Upsert(ctx context.Context, id, content string, vector []float32, attrs map[string]string) error

	// Query returns up to topK matches ordered by similarity descending.
	// Ties are broken arbitrarily by the backend.
	Query(ctx context.Context, vector []float32, where map[string]string, topK int) ([]Match, error)

	// List enumerates up to limit documents matching the filter, without
	// meaningful similarity scores.
	List(ctx context.Context, where map[string]string, limit int) ([]Match, error)

	// DeleteByIDs removes the given documents and reports how many existed.
	DeleteByIDs(ctx context.Context, ids []string) (int, error)

	Count(ctx context.Context) (int, error)
}
