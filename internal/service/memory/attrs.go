package memory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/storage/vecstore"
)

// Attribute keys of the persisted record at the vector store boundary.
// Every scalar field is stored as a string; sources are joined with a
// delimiter not expected in URLs.
const (
	attrUserID     = "userId"
	attrSessionID  = "sessionId"
	attrQuery      = "query"
	attrResponse   = "response"
	attrSources    = "sources"
	attrTimestamp  = "timestamp"
	attrKind       = "kind"
	attrConfidence = "confidence"

	sourcesSeparator = "|"
)

func recordAttrs(rec core.MemoryRecord) map[string]string {
	attrs := map[string]string{
		attrUserID:    rec.UserID,
		attrSessionID: rec.SessionID,
		attrQuery:     rec.Query,
		attrResponse:  rec.Response,
		attrSources:   strings.Join(rec.Sources, sourcesSeparator),
		attrTimestamp: rec.Timestamp.UTC().Format(time.RFC3339),
		attrKind:      string(rec.Kind),
	}

	if rec.Confidence != nil {
		attrs[attrConfidence] = strconv.FormatFloat(*rec.Confidence, 'f', -1, 64)
	} else {
		attrs[attrConfidence] = ""
	}

	return attrs
}

func recordFromMatch(m vecstore.Match) (core.MemoryRecord, error) {
	attrs := m.Attributes

	ts, err := time.Parse(time.RFC3339, attrs[attrTimestamp])
	if err != nil {
		return core.MemoryRecord{}, fmt.Errorf("invalid timestamp on record %s: %w", m.ID, err)
	}

	rec := core.MemoryRecord{
		ID:        m.ID,
		Content:   m.Content,
		UserID:    attrs[attrUserID],
		SessionID: attrs[attrSessionID],
		Query:     attrs[attrQuery],
		Response:  attrs[attrResponse],
		Timestamp: ts,
		Kind:      core.MemoryKind(attrs[attrKind]),
	}

	if joined := attrs[attrSources]; joined != "" {
		rec.Sources = strings.Split(joined, sourcesSeparator)
	}

	if raw := attrs[attrConfidence]; raw != "" {
		c, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return core.MemoryRecord{}, fmt.Errorf("invalid confidence on record %s: %w", m.ID, err)
		}
		rec.Confidence = &c
	}

	return rec, nil
}
