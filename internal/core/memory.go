package core

import "time"

// MemoryKind tags the provenance of a stored memory.
type MemoryKind string

const (
	KindConversation MemoryKind = "conversation"
	KindWebSearch    MemoryKind = "web_search"
	KindDocument     MemoryKind = "document"
	KindSummary      MemoryKind = "summary"
)

func (k MemoryKind) Valid() bool {
	switch k {
	case KindConversation, KindWebSearch, KindDocument, KindSummary:
		return true
	}
	return false
}

// MemoryRecord is one stored user/assistant interaction. Records are
// immutable after creation; there is no update operation.
type MemoryRecord struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	UserID    string     `json:"user_id"`
	SessionID string     `json:"session_id,omitempty"` // empty = orphaned legacy record
	Query     string     `json:"query"`
	Response  string     `json:"response"`
	Sources   []string   `json:"sources,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Kind      MemoryKind `json:"kind"`
	Confidence *float64  `json:"confidence,omitempty"`
}

// MemorySearchResult is a MemoryRecord with the raw similarity assigned by
// the vector store and the combined similarity+recency ranking score. The
// score is computed per search and never persisted.
type MemorySearchResult struct {
	MemoryRecord
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}

type MemoryStats struct {
	Total  int                `json:"total"`
	ByKind map[MemoryKind]int `json:"by_kind"`
}
