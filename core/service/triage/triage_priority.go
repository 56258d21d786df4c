package triage

import (
	"math"
	"regexp"

	"triage_server/core/domain"
)

// =============================================================================
// Priority Adjuster
// =============================================================================

// dollarAmountRe matches a dollar amount like $245.00 or $1,200.
var dollarAmountRe = regexp.MustCompile(`\$[\d,]+\.?\d*`)

// HistoryAdjuster is the extension point for reply-history priority signals.
// It runs last, on the fractional priority, before rounding and clamping.
type HistoryAdjuster interface {
	Adjust(email *domain.EmailRecord, priority float64) float64
}

// NoopHistoryAdjuster keeps the priority unchanged. It is the default until a
// reply-rate signal exists.
type NoopHistoryAdjuster struct{}

// Adjust returns the priority as is.
func (NoopHistoryAdjuster) Adjust(_ *domain.EmailRecord, priority float64) float64 {
	return priority
}

// adjustPriority applies the urgency/importance and state boosts to the base
// priority chosen by escalation. subject must be lower-cased. Returns the
// final integer priority in [1,5].
func adjustPriority(email *domain.EmailRecord, best scoreResult, subject string, history HistoryAdjuster) int {
	priority := float64(best.basePriority)

	// Urgency takes precedence; importance is only checked when it missed.
	if containsAny(subject, urgentKeywords) {
		priority = math.Min(5, priority+2)
	} else if containsAny(subject, importantKeywords) {
		priority = math.Min(5, priority+1)
	}

	lowValue := email.IsNonHuman || best.category == domain.CategoryOther
	if lowValue {
		// Automated or unmatched mail never escalates.
		priority = 1
	} else {
		if email.Unread {
			priority = math.Min(5, priority+0.5)
		}
		if best.category == domain.CategoryFinance && dollarAmountRe.MatchString(subject) {
			priority = math.Min(5, priority+0.5)
		}
	}

	priority = history.Adjust(email, priority)

	if lowValue {
		return 1
	}
	return clampPriority(int(math.Round(priority)))
}

// clampPriority forces p into the valid [1,5] range.
func clampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 5 {
		return 5
	}
	return p
}
