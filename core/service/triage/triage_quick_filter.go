package triage

import (
	"regexp"
	"strings"

	"triage_server/core/domain"
)

// =============================================================================
// Quick Filters (sender + subject only)
// =============================================================================

// digitRunRe matches a standalone 4-8 digit run, the shape of one-time codes.
var digitRunRe = regexp.MustCompile(`\b\d{4,8}\b`)

// isNonHumanQuick detects automated senders from address and subject alone.
// Runs before any scoring: automated mail must never be miscategorized as
// urgent.
func isNonHumanQuick(from, subject string) bool {
	return containsAny(from, nonHumanMarkers) || containsAny(subject, nonHumanMarkers)
}

// isAuthCode detects one-time-code mail from the subject alone: a 4-8 digit
// run together with "code" or "verify".
func isAuthCode(subject string) bool {
	if !digitRunRe.MatchString(subject) {
		return false
	}
	return strings.Contains(subject, "code") || strings.Contains(subject, "verify")
}

// isNewsletterQuick detects bulk newsletters from sender and subject alone.
func isNewsletterQuick(from, subject string) bool {
	return containsAny(from, newsletterMarkers) || containsAny(subject, newsletterMarkers)
}

// IsNonHuman is the standalone quick predicate over a record.
func IsNonHuman(email *domain.EmailRecord) bool {
	return isNonHumanQuick(strings.ToLower(email.From), strings.ToLower(email.Subject))
}

// IsNonHumanDeep additionally inspects the first body line for auto-reply and
// bounce phrasing, and the sender domain against known transactional-mail
// providers. Used only when explicitly requested, not on the main
// classification path.
func IsNonHumanDeep(email *domain.EmailRecord) bool {
	from := strings.ToLower(email.From)
	subject := strings.ToLower(email.Subject)

	if isNonHumanQuick(from, subject) {
		return true
	}

	body := strings.ToLower(email.Body)
	firstLine := body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		firstLine = body[:i]
	}
	if containsAny(firstLine, autoReplyPhrases) {
		return true
	}

	_, dom := splitSender(from)
	return containsAny(dom, transactionalDomains)
}

// IsNewsletter is the standalone newsletter predicate over a record.
func IsNewsletter(email *domain.EmailRecord) bool {
	return isNewsletterQuick(strings.ToLower(email.From), strings.ToLower(email.Subject))
}
