// Package store defines the persistence interface for the phrase learning
// system.
//
// The store holds three kinds of rows: approved phrases (the learned part of
// the matching catalogue), pending phrases observed by the semantic tier but
// not yet approved, and blacklist entries for phrases a reviewer rejected.
// It also persists per-user runtime settings.
//
// Two implementations exist: sqlite (default, embedded) and postgres
// (optional, with pgvector-backed nearest-approved search). Both migrate
// their schema idempotently on open.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup by identifier matches no row.
var ErrNotFound = errors.New("store: not found")

// Pending phrase lifecycle states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// PhraseEntry is one approved phrase in the matching catalogue.
type PhraseEntry struct {
	ID        int64
	Category  string
	Phrase    string
	Embedding []float32 // may be nil until the repository persists vectors
	CreatedAt time.Time
}

// PendingPhrase is a phrase observed by the semantic tier that is awaiting
// review or auto-approval.
type PendingPhrase struct {
	ID             string // uuid
	Phrase         string
	Category       string
	Confidence     float64 // highest confidence seen so far
	DetectionCount int
	FirstSeenAt    time.Time
	LastSeenAt     time.Time
	Contexts       string // " | "-joined transcript snippets, capped at 500 chars
	QualityScore   float64
	CanonicalForm  string
	SimilarTo      string // nearest approved phrase at insert time, may be empty
	Status         string
}

// BlacklistEntry records a rejected phrase so it is never re-proposed.
type BlacklistEntry struct {
	Phrase    string
	Category  string
	Reason    string
	CreatedAt time.Time
}

// CategoryPerformance summarizes historical review outcomes for one
// category. The learning layer uses ApprovalRate to adapt per-category
// approval thresholds.
type CategoryPerformance struct {
	Category     string
	Approved     int
	Rejected     int
	ApprovalRate float64 // Approved / (Approved + Rejected), 0 when no history
}

// Store is the persistence abstraction for the phrase learning system.
//
// All write methods are called through a best-effort guard during detection,
// so implementations should fail fast rather than retry indefinitely.
// Implementations must be safe for concurrent use.
type Store interface {
	// LoadPhrases returns every approved phrase, embeddings included where
	// persisted.
	LoadPhrases(ctx context.Context) ([]PhraseEntry, error)

	// SavePhraseEmbedding persists the embedding vector for an approved
	// phrase. The row is created if it does not exist.
	SavePhraseEmbedding(ctx context.Context, category, phrase string, embedding []float32) error

	// NearestApproved returns the approved phrase whose embedding is most
	// similar (cosine) to the query vector, with its similarity in [ -1, 1].
	// Returns "" and no error when no approved phrase has an embedding.
	NearestApproved(ctx context.Context, embedding []float32) (string, float64, error)

	// UpsertPendingPhrase records one observation of p.Phrase. When a pending
	// row with the same lower(trim(phrase)) already exists the observation is
	// merged into it atomically: detection counts add, confidence and quality
	// take the maximum, contexts append, the seen-at window widens. Dedup is
	// enforced by a unique index, so concurrent observations of the same
	// phrase never produce two rows. Returns the resulting row.
	UpsertPendingPhrase(ctx context.Context, p *PendingPhrase) (*PendingPhrase, error)

	// GetPendingByPhrase finds the pending row whose lower(trim(phrase))
	// matches, regardless of category. Returns ErrNotFound when absent.
	GetPendingByPhrase(ctx context.Context, phrase string) (*PendingPhrase, error)

	// ListPending returns pending rows ordered by quality score descending.
	// limit <= 0 means no limit.
	ListPending(ctx context.Context, limit int) ([]PendingPhrase, error)

	// ApprovePhrase marks the pending row approved and upserts the phrase
	// into the approved catalogue ((category, phrase) unique). Returns the
	// updated row.
	ApprovePhrase(ctx context.Context, id string) (*PendingPhrase, error)

	// RejectPhrase marks the pending row rejected and records the phrase in
	// the blacklist.
	RejectPhrase(ctx context.Context, id, reason string) error

	// AddBlacklist records a phrase as rejected ((phrase, category) unique;
	// duplicate adds are not errors).
	AddBlacklist(ctx context.Context, phrase, category, reason string) error

	// IsBlacklisted reports whether the phrase appears in the blacklist
	// under any category. Matching is on lower(trim(phrase)).
	IsBlacklisted(ctx context.Context, phrase string) (bool, error)

	// MergeDuplicatePending groups pending rows by lower(trim(phrase))
	// ignoring category, keeps the highest (confidence, detectionCount) row
	// per group with counts and contexts merged in, and deletes the rest.
	// Returns the number of rows removed.
	MergeDuplicatePending(ctx context.Context) (int, error)

	// CategoryPerformance returns review statistics for one category.
	CategoryPerformance(ctx context.Context, category string) (CategoryPerformance, error)

	// LoadSettings returns the persisted settings for a user. Missing users
	// yield an empty map, not an error.
	LoadSettings(ctx context.Context, userID string) (map[string]string, error)

	// SaveSettings upserts the given settings for a user, leaving keys not
	// present in values untouched.
	SaveSettings(ctx context.Context, userID string, values map[string]string) error

	// Close releases the underlying database resources.
	Close() error
}
