package domain

import (
	"context"
	"errors"
	"time"
)

// ErrIndexNotReady is returned by a Retriever whose similarity index has not
// been built yet.
var ErrIndexNotReady = errors.New("event index not initialized")

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// VectorStore persists event vectors and supports filtered similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(records []EventRecord, vectors [][]float64) error
	Search(vector []float64, topK int, filter *Filter) ([]SearchResult, error)
	Clear() error
}

// Retriever is the nearest-neighbor search boundary the assistant talks to.
type Retriever interface {
	Search(ctx context.Context, query string, topK int, filter *Filter) ([]EventRecord, error)
}

// QueryRefiner turns a raw user utterance into a retrieval query plus a
// specificity hint.
type QueryRefiner interface {
	Refine(ctx context.Context, utterance string, today time.Time) (query string, spec Specificity, err error)
}

// Message is one chat turn in a session transcript.
type Message struct {
	Role    string
	Content string
	At      time.Time
}

// SessionStore is the append-only chat transcript log.
type SessionStore interface {
	SaveMessage(ctx context.Context, sessionID, role, content string) error
	LoadHistory(ctx context.Context, sessionID string) ([]Message, error)
	Close() error
}

// Assistant is the conversational surface exposed to the UI. Respond never
// fails: every error condition comes back as a user-facing message.
type Assistant interface {
	Respond(ctx context.Context, sessionID, input string) string
}
