package triage

import (
	"regexp"
	"strings"
	"time"

	"triage_server/core/domain"
)

// =============================================================================
// DND Rule Evaluator
// =============================================================================

// deadlineRe matches the word "deadline" followed later in the text by a
// D/M-shaped date.
var deadlineRe = regexp.MustCompile(`(?i)\bdeadline\b.*?\b(\d{1,2}[/\-]\d{1,2})`)

// DNDEvaluator matches emails against user-defined suppression rules. The
// clock is injectable so time-window rules are testable.
type DNDEvaluator struct {
	now func() time.Time
}

// NewDNDEvaluator creates an evaluator on the wall clock.
func NewDNDEvaluator() *DNDEvaluator {
	return &DNDEvaluator{now: time.Now}
}

// WithClock returns an evaluator using the given clock.
func (e *DNDEvaluator) WithClock(now func() time.Time) *DNDEvaluator {
	return &DNDEvaluator{now: now}
}

// EvaluateDND reports whether the current wall-clock time and stored rules
// suppress notification for this email.
func EvaluateDND(email *domain.EmailRecord, rules []domain.DNDRule) bool {
	return NewDNDEvaluator().IsSuppressed(email, rules)
}

// IsSuppressed walks the rules in order. The first enabled rule that matches
// without a defeating exception suppresses; an exception defeats only the
// rule it is attached to, later rules still run. An empty rule list never
// suppresses.
func (e *DNDEvaluator) IsSuppressed(email *domain.EmailRecord, rules []domain.DNDRule) bool {
	if email == nil || len(rules) == 0 {
		return false
	}

	from := strings.ToLower(email.From)
	hour := e.now().Hour()

	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled {
			continue
		}

		if rule.HasTimeWindow() && hourInWindow(hour, *rule.TimeStart, *rule.TimeEnd) {
			if !matchesException(email, rule.Exception) {
				return true
			}
			continue
		}

		if len(rule.Senders) > 0 && senderListed(from, rule.Senders) {
			if !matchesException(email, rule.Exception) {
				return true
			}
		}
	}

	return false
}

// hourInWindow checks [start, end) with wrap-around: a window like 22..7
// covers late evening through early morning.
func hourInWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func senderListed(from string, senders []string) bool {
	for _, s := range senders {
		if s != "" && strings.Contains(from, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// matchesException reports whether any enabled exception on a rule matches
// the email's subject+body text.
func matchesException(email *domain.EmailRecord, exceptions []domain.DNDException) bool {
	if len(exceptions) == 0 {
		return false
	}

	text := strings.ToLower(email.Subject) + " " + strings.ToLower(email.Body)

	for _, ex := range exceptions {
		switch ex.Type {
		case domain.ExceptionKeyword:
			if ex.Enabled && ex.Value != "" && strings.Contains(text, strings.ToLower(ex.Value)) {
				return true
			}
		case domain.ExceptionUrgent:
			if ex.Enabled && containsAny(text, urgentKeywords) {
				return true
			}
		case domain.ExceptionDeadline:
			if ex.Enabled && deadlineRe.MatchString(text) {
				return true
			}
		}
	}

	return false
}
