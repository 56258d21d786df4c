package triage

import (
	"testing"
	"time"

	"triage_server/core/domain"
)

func clockAt(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 5, 1, hour, 30, 0, 0, time.UTC)
	}
}

func intPtr(v int) *int { return &v }

func TestDNDTimeWindow(t *testing.T) {
	nightRule := domain.DNDRule{
		Enabled:   true,
		TimeStart: intPtr(22),
		TimeEnd:   intPtr(7),
	}
	email := &domain.EmailRecord{
		From:    "friend@example.com",
		Subject: "dinner next week?",
	}

	tests := []struct {
		name string
		hour int
		want bool
	}{
		{"late evening inside wrap-around window", 23, true},
		{"window start is inclusive", 22, true},
		{"early morning inside wrap-around window", 3, true},
		{"window end is exclusive", 7, false},
		{"midday outside window", 12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewDNDEvaluator().WithClock(clockAt(tt.hour))
			if got := ev.IsSuppressed(email, []domain.DNDRule{nightRule}); got != tt.want {
				t.Errorf("IsSuppressed at hour %d = %v, want %v", tt.hour, got, tt.want)
			}
		})
	}
}

func TestDNDExceptions(t *testing.T) {
	rule := domain.DNDRule{
		Enabled:   true,
		TimeStart: intPtr(22),
		TimeEnd:   intPtr(7),
		Exception: []domain.DNDException{
			{Type: domain.ExceptionUrgent, Enabled: true},
			{Type: domain.ExceptionKeyword, Value: "server down", Enabled: true},
			{Type: domain.ExceptionKeyword, Value: "oncall", Enabled: false},
		},
	}
	ev := NewDNDEvaluator().WithClock(clockAt(23))

	tests := []struct {
		name    string
		subject string
		body    string
		want    bool
	}{
		{"plain mail is suppressed", "weekly recap", "nothing new", true},
		{"urgent keyword defeats the rule", "please read", "this is urgent", false},
		{"custom keyword defeats the rule", "alert", "the server down page is red", false},
		{"disabled exception does not defeat", "oncall handoff", "see you at nine", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &domain.EmailRecord{
				From:    "alerts@example.com",
				Subject: tt.subject,
				Body:    tt.body,
			}
			if got := ev.IsSuppressed(email, []domain.DNDRule{rule}); got != tt.want {
				t.Errorf("IsSuppressed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDNDDeadlineException(t *testing.T) {
	rule := domain.DNDRule{
		Enabled:   true,
		TimeStart: intPtr(22),
		TimeEnd:   intPtr(7),
		Exception: []domain.DNDException{
			{Type: domain.ExceptionDeadline, Enabled: true},
		},
	}
	ev := NewDNDEvaluator().WithClock(clockAt(23))

	tests := []struct {
		name string
		body string
		want bool
	}{
		{"deadline with date defeats the rule", "deadline 5/1 for the draft", false},
		{"deadline with dashed date defeats the rule", "final deadline is 12-31, no extensions", false},
		{"date without the word deadline does not", "see you on 5/1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &domain.EmailRecord{
				From:    "team@example.com",
				Subject: "project update",
				Body:    tt.body,
			}
			if got := ev.IsSuppressed(email, []domain.DNDRule{rule}); got != tt.want {
				t.Errorf("IsSuppressed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDNDSenderRules(t *testing.T) {
	rules := []domain.DNDRule{
		{Enabled: false, Senders: []string{"example.com"}},
		{Enabled: true, Senders: []string{"spam.com", "deals.io"}},
	}
	ev := NewDNDEvaluator().WithClock(clockAt(12))

	tests := []struct {
		name string
		from string
		want bool
	}{
		{"listed sender is suppressed", "promo@spam.com", true},
		{"second listed sender is suppressed", "offers@deals.io", true},
		{"disabled rule does not suppress", "someone@example.com", false},
		{"unlisted sender passes", "friend@gmail.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &domain.EmailRecord{From: tt.from, Subject: "hi"}
			if got := ev.IsSuppressed(email, rules); got != tt.want {
				t.Errorf("IsSuppressed(%q) = %v, want %v", tt.from, got, tt.want)
			}
		})
	}
}

func TestDNDExceptionScopedToOwnRule(t *testing.T) {
	// The first rule's exception defeats only the first rule; the second
	// rule still suppresses the same email.
	rules := []domain.DNDRule{
		{
			Enabled:   true,
			TimeStart: intPtr(22),
			TimeEnd:   intPtr(7),
			Exception: []domain.DNDException{
				{Type: domain.ExceptionKeyword, Value: "oncall", Enabled: true},
			},
		},
		{Enabled: true, Senders: []string{"pager.io"}},
	}
	ev := NewDNDEvaluator().WithClock(clockAt(23))

	email := &domain.EmailRecord{
		From:    "alerts@pager.io",
		Subject: "oncall handoff",
	}
	if !ev.IsSuppressed(email, rules) {
		t.Error("IsSuppressed = false, want true (second rule has no exception)")
	}
}

func TestDNDNoRules(t *testing.T) {
	ev := NewDNDEvaluator().WithClock(clockAt(23))
	email := &domain.EmailRecord{From: "a@b.c", Subject: "hi"}

	if ev.IsSuppressed(email, nil) {
		t.Error("IsSuppressed with no rules = true, want false")
	}
	if ev.IsSuppressed(nil, []domain.DNDRule{{Enabled: true, Senders: []string{"b.c"}}}) {
		t.Error("IsSuppressed with nil email = true, want false")
	}
}
