package memory

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/storage/vecstore"
	"github.com/sandevgo/recall/pkg/log"
)

// Engine owns the store/search/delete/stats policy for semantic memory.
// It embeds content, applies session-scoped filters, re-ranks candidates
// by similarity and recency, and degrades to "no memory" when the backing
// store is down.
//
// A single Engine is shared by all request handlers. The only mutable
// state is the ready flag, set once by Init; everything else lives in the
// vector store.
type Engine struct {
	store    vecstore.Store
	embedder core.Embedder
	cfg      *config.MemoryConfig
	ready    atomic.Bool
}

// StoreInput is a memory record before an id and timestamp are assigned.
type StoreInput struct {
	Content    string
	UserID     string
	SessionID  string
	Query      string
	Response   string
	Sources    []string
	Kind       core.MemoryKind
	Confidence *float64
}

func NewEngine(store vecstore.Store, embedder core.Embedder, cfg *config.MemoryConfig) *Engine {
	return &Engine{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Init probes the vector store once and marks the engine ready. Callers
// arriving before Init completes see a not-ready engine and degrade
// instead of blocking.
func (e *Engine) Init(ctx context.Context) error {
	count, err := e.store.Count(ctx)
	if err != nil {
		return goerr.Wrap(err, "vector store probe failed")
	}

	e.ready.Store(true)
	log.FromCtx(ctx).Info().Int("records", count).Msg("memory engine ready")
	return nil
}

func (e *Engine) IsReady() bool {
	return e.ready.Load()
}

// Store persists one interaction as a retrievable memory and returns its
// id. It is on the hot path: apart from argument validation it never
// fails — embedding and store errors are logged and swallowed, and the
// empty id signals that nothing was stored.
func (e *Engine) Store(ctx context.Context, in StoreInput) (string, error) {
	if in.UserID == "" {
		return "", goerr.Wrap(core.ErrInvalidArgument, "userId is required")
	}
	if in.Kind == "" {
		in.Kind = core.KindConversation
	}
	if !in.Kind.Valid() {
		return "", goerr.Wrap(core.ErrInvalidArgument, "unknown memory kind", goerr.V("kind", in.Kind))
	}

	logger := log.FromCtx(ctx)
	if !e.ready.Load() {
		logger.Debug().Msg("memory engine disabled, skipping store")
		return "", nil
	}

	content := in.Content
	if content == "" {
		content = in.Query
	}

	vector, err := e.embedder.Embed(ctx, content)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to embed memory content")
		return "", nil
	}

	rec := core.MemoryRecord{
		ID:         uuid.New().String(),
		Content:    content,
		UserID:     in.UserID,
		SessionID:  in.SessionID,
		Query:      in.Query,
		Response:   in.Response,
		Sources:    in.Sources,
		Timestamp:  time.Now().UTC(),
		Kind:       in.Kind,
		Confidence: in.Confidence,
	}

	if err := e.store.Upsert(ctx, rec.ID, content, vector, recordAttrs(rec)); err != nil {
		logger.Warn().Err(err).Msg("failed to store memory")
		return "", nil
	}

	logger.Debug().
		Str("memory_id", rec.ID).
		Str("session_id", rec.SessionID).
		Str("kind", string(rec.Kind)).
		Msg("stored memory")
	return rec.ID, nil
}

// Search returns up to limit memories relevant to the query, ranked by
// combined similarity and recency. sessionID scopes the search to one
// conversation; when empty, orphaned records (stored without a session)
// are still excluded so stale content never leaks into a fresh session.
//
// An empty result is an expected outcome: a not-ready engine, a store
// failure, or nothing above the similarity threshold all yield an empty
// slice, never an error. Only invalid arguments fail.
func (e *Engine) Search(ctx context.Context, query, userID string, limit int, sessionID string) ([]core.MemorySearchResult, error) {
	if userID == "" {
		return nil, goerr.Wrap(core.ErrInvalidArgument, "userId is required")
	}
	if limit <= 0 {
		return nil, goerr.Wrap(core.ErrInvalidArgument, "limit must be positive", goerr.V("limit", limit))
	}

	logger := log.FromCtx(ctx)
	if !e.ready.Load() {
		logger.Debug().Msg("memory engine disabled, skipping search")
		return []core.MemorySearchResult{}, nil
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to embed search query")
		return []core.MemorySearchResult{}, nil
	}

	where := map[string]string{attrUserID: userID}
	if sessionID != "" {
		where[attrSessionID] = sessionID
	}

	// Over-fetch to leave room for threshold filtering before truncation.
	topK := limit * 2
	if topK < 10 {
		topK = 10
	}

	matches, err := e.store.Query(ctx, vector, where, topK)
	if err != nil {
		logger.Warn().Err(err).Msg("memory search failed")
		return []core.MemorySearchResult{}, nil
	}

	now := time.Now().UTC()
	results := make([]core.MemorySearchResult, 0, len(matches))
	for _, m := range matches {
		if m.Similarity < e.cfg.SimilarityThreshold {
			continue
		}

		rec, err := recordFromMatch(m)
		if err != nil {
			logger.Warn().Err(err).Str("memory_id", m.ID).Msg("skipping malformed record")
			continue
		}

		// The store filter should already guarantee scoping; re-check here
		// so a driver filter bug can never leak another conversation's
		// records or orphaned legacy data.
		if sessionID != "" && rec.SessionID != sessionID {
			logger.Warn().Str("memory_id", rec.ID).Msg("store returned record outside requested session")
			continue
		}
		if rec.SessionID == "" {
			continue
		}

		recency := e.recencyScore(now, rec.Timestamp)
		results = append(results, core.MemorySearchResult{
			MemoryRecord: rec,
			Similarity:   m.Similarity,
			Score:        e.cfg.SimilarityWeight*m.Similarity + e.cfg.RecencyWeight*recency,
		})
	}

	// Stable sort keeps store-return order on ties, making the final order
	// deterministic within a process.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}

	logger.Debug().
		Int("results", len(results)).
		Str("session_id", sessionID).
		Msg("memory search done")
	return results, nil
}

// GetUserMemories enumerates all records of a user regardless of session
// scoping, bounded by the enumeration page size. Unlike Search it
// propagates failures: its callers asked an explicit question and expect
// a real answer.
func (e *Engine) GetUserMemories(ctx context.Context, userID string) ([]core.MemoryRecord, error) {
	if userID == "" {
		return nil, goerr.Wrap(core.ErrInvalidArgument, "userId is required")
	}
	if !e.ready.Load() {
		return nil, goerr.Wrap(core.ErrNotInitialized, "cannot enumerate memories")
	}

	matches, err := e.store.List(ctx, map[string]string{attrUserID: userID}, e.cfg.EnumerationPageSize)
	if err != nil {
		return nil, err
	}

	records := make([]core.MemoryRecord, 0, len(matches))
	for _, m := range matches {
		rec, err := recordFromMatch(m)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("memory_id", m.ID).Msg("skipping malformed record")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteMemory removes a single record. Deleting an unknown id is not an
// error; it reports false.
func (e *Engine) DeleteMemory(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, goerr.Wrap(core.ErrInvalidArgument, "memory id is required")
	}
	if !e.ready.Load() {
		return false, goerr.Wrap(core.ErrNotInitialized, "cannot delete memory")
	}

	n, err := e.store.DeleteByIDs(ctx, []string{id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteSessionMemories removes every record scoped to the session and
// returns the count. The store has no filtered delete, so this enumerates
// then deletes page by page.
func (e *Engine) DeleteSessionMemories(ctx context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		// An empty filter value would match orphaned records.
		return 0, goerr.Wrap(core.ErrInvalidArgument, "sessionId is required")
	}
	return e.deleteByFilter(ctx, map[string]string{attrSessionID: sessionID})
}

// DeleteUserMemories removes every record of a user, used on data-reset.
func (e *Engine) DeleteUserMemories(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, goerr.Wrap(core.ErrInvalidArgument, "userId is required")
	}
	return e.deleteByFilter(ctx, map[string]string{attrUserID: userID})
}

func (e *Engine) deleteByFilter(ctx context.Context, where map[string]string) (int, error) {
	if !e.ready.Load() {
		return 0, goerr.Wrap(core.ErrNotInitialized, "cannot delete memories")
	}

	total := 0
	for {
		matches, err := e.store.List(ctx, where, e.cfg.EnumerationPageSize)
		if err != nil {
			return total, err
		}
		if len(matches) == 0 {
			return total, nil
		}

		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}

		n, err := e.store.DeleteByIDs(ctx, ids)
		if err != nil {
			return total, err
		}
		total += n

		if len(matches) < e.cfg.EnumerationPageSize {
			return total, nil
		}
	}
}

// GetStats reports the total record count, globally or for one user, with
// a by-kind breakdown tallied from a bounded sample. When the collection
// is larger than the sample page the breakdown is extrapolated and should
// be read as an approximation, not an exact census. The global total comes
// from the store count; a per-user total comes from a single enumeration
// page and is therefore capped at EnumerationPageSize.
func (e *Engine) GetStats(ctx context.Context, userID string) (*core.MemoryStats, error) {
	if !e.ready.Load() {
		return nil, goerr.Wrap(core.ErrNotInitialized, "cannot compute stats")
	}

	where := map[string]string{}
	if userID != "" {
		where[attrUserID] = userID
	}

	sample, err := e.store.List(ctx, where, e.cfg.EnumerationPageSize)
	if err != nil {
		return nil, err
	}

	total := len(sample)
	if userID == "" {
		if total, err = e.store.Count(ctx); err != nil {
			return nil, err
		}
	}

	stats := &core.MemoryStats{
		Total:  total,
		ByKind: make(map[core.MemoryKind]int),
	}
	for _, m := range sample {
		stats.ByKind[core.MemoryKind(m.Attributes[attrKind])]++
	}

	// Scale the sampled tally up to the real total when truncated.
	if len(sample) > 0 && total > len(sample) {
		factor := float64(total) / float64(len(sample))
		for kind, n := range stats.ByKind {
			stats.ByKind[kind] = int(float64(n) * factor)
		}
	}

	return stats, nil
}

// recencyScore decays linearly from 1.0 (now) to 0.0 at the edge of the
// recency window; older records are clamped at zero.
func (e *Engine) recencyScore(now, ts time.Time) float64 {
	age := now.Sub(ts)
	if age <= 0 {
		return 1
	}

	r := 1 - float64(age)/float64(e.cfg.RecencyWindow)
	if r < 0 {
		return 0
	}
	return r
}
