package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmailNotFound is returned by stores when no record matches.
var ErrEmailNotFound = errors.New("email not found")

// InboxTab represents the inbox bucket an email is surfaced under.
type InboxTab string

const (
	TabAll        InboxTab = "all"
	TabPrimary    InboxTab = "primary"
	TabSocial     InboxTab = "social"
	TabPromotions InboxTab = "promotions"
	TabUpdates    InboxTab = "updates"
	TabForums     InboxTab = "forums"
)

// EmailRecord is a single email as supplied by the caller, plus the derived
// triage fields once classification has run. The engine only reads the input
// fields and returns a ClassificationResult; merging it back is the caller's
// (or the worker's) job.
type EmailRecord struct {
	ID      string    `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Date    time.Time `json:"date"`
	Unread  bool      `json:"unread"`

	// Derived fields (set after classification)
	Category      Category       `json:"category,omitempty"`
	Priority      int            `json:"priority,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	IsNewsletter  bool           `json:"is_newsletter,omitempty"`
	IsNonHuman    bool           `json:"is_non_human,omitempty"`
	IsDND         bool           `json:"is_dnd,omitempty"`
	Tab           InboxTab       `json:"tab,omitempty"`
	ImportantInfo *ImportantInfo `json:"important_info,omitempty"`
	ProcessedAt   *time.Time     `json:"processed_at,omitempty"`
}

// ClassificationResult is the outcome of one classification call.
// Produced fresh per call, never mutated after return.
type ClassificationResult struct {
	Category     Category `json:"category"`
	Priority     int      `json:"priority"` // always in [1,5]
	Confidence   float64  `json:"confidence"`
	IsNewsletter bool     `json:"is_newsletter"`
	IsNonHuman   bool     `json:"is_non_human"`
	AutoDelete   bool     `json:"auto_delete"`
}

// ImportantInfo holds structured facts extracted from one email's text.
// Order of first appearance is preserved; no deduplication.
type ImportantInfo struct {
	Links []string `json:"links"`
	Dates []string `json:"dates"`
	Money []string `json:"money"`
	Tasks []string `json:"tasks"` // capped to the first 5 matches
}

// Empty reports whether nothing was extracted.
func (i *ImportantInfo) Empty() bool {
	return i == nil || (len(i.Links) == 0 && len(i.Dates) == 0 && len(i.Money) == 0 && len(i.Tasks) == 0)
}

// EmailFilter narrows List queries over stored records.
type EmailFilter struct {
	UserID      uuid.UUID
	Tab         *InboxTab
	Category    *Category
	Priority    *int
	MinPriority *int
	MaxPriority *int
	Unread      *bool
	DateFrom    *time.Time
	DateTo      *time.Time
	// ExcludeLowValue drops category "other" and non-human senders
	// (the reply-queue views never show them).
	ExcludeLowValue bool
	// IncludeLowValue inverts the filter: only "other"/non-human/priority<=3.
	IncludeLowValue bool
	Limit           int
	Offset          int
}

// EmailRepository is the outbound port for the classified-email store.
type EmailRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID, id string) (*EmailRecord, error)
	List(ctx context.Context, filter *EmailFilter) ([]*EmailRecord, error)
	Count(ctx context.Context, filter *EmailFilter) (int, error)
	ListUnprocessed(ctx context.Context, userID uuid.UUID, staleBefore time.Time, limit int) ([]*EmailRecord, error)
	ListBacklogUsers(ctx context.Context, staleBefore time.Time) ([]uuid.UUID, error)
	Upsert(ctx context.Context, email *EmailRecord) error
	UpsertBatch(ctx context.Context, emails []*EmailRecord) error
}
