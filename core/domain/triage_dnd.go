package domain

import (
	"context"

	"github.com/google/uuid"
)

// DNDExceptionType distinguishes the exception variants of a DND rule.
type DNDExceptionType string

const (
	// ExceptionKeyword matches a literal substring against subject+body.
	ExceptionKeyword DNDExceptionType = "keyword"
	// ExceptionUrgent matches when any shared urgent keyword is present.
	ExceptionUrgent DNDExceptionType = "urgent"
	// ExceptionDeadline matches the word "deadline" followed by a D/M date.
	ExceptionDeadline DNDExceptionType = "deadline"
)

// DNDException is one escape hatch on a DND rule. Keyword exceptions carry the
// literal in Value; urgent and deadline exceptions only use Enabled.
type DNDException struct {
	Type    DNDExceptionType `json:"type"`
	Value   string           `json:"value,omitempty"`
	Enabled bool             `json:"enabled"`
}

// DNDRule suppresses notifications for matching emails. A rule may carry a
// time window (hours, 0-23), a sender substring list, or both; a disabled rule
// is skipped entirely. Exceptions defeat the rule they are attached to only.
type DNDRule struct {
	Enabled   bool           `json:"enabled"`
	TimeStart *int           `json:"time_start,omitempty"` // inclusive hour
	TimeEnd   *int           `json:"time_end,omitempty"`   // exclusive hour
	Senders   []string       `json:"senders,omitempty"`
	Exception []DNDException `json:"exceptions,omitempty"`
}

// HasTimeWindow reports whether the rule carries a usable time window.
func (r *DNDRule) HasTimeWindow() bool {
	return r.TimeStart != nil && r.TimeEnd != nil
}

// Recognized setting keys in the triage settings store.
const (
	SettingDNDRules          = "dndRules"
	SettingCategoryOverrides = "categoryOverrides"
)

// SettingsRepository is the outbound port for per-user triage settings.
type SettingsRepository interface {
	GetDNDRules(ctx context.Context, userID uuid.UUID) ([]DNDRule, error)
	SaveDNDRules(ctx context.Context, userID uuid.UUID, rules []DNDRule) error
	GetCategoryOverrides(ctx context.Context, userID uuid.UUID) ([]CategoryOverride, error)
	SaveCategoryOverrides(ctx context.Context, userID uuid.UUID, overrides []CategoryOverride) error
}
