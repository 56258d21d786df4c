// Package triage implements the cost-aware email classification engine:
// quick filters, progressive-scope category scoring, priority adjustment,
// structured info extraction and do-not-disturb rule evaluation.
//
// Every operation is a pure, synchronous function of its inputs and the
// immutable category registry; the package performs no I/O and is safe for
// concurrent use without locking.
package triage

import "strings"

// =============================================================================
// Shared Keyword Sets
// =============================================================================

// urgentKeywords raise priority by 2 when found in the subject, and feed the
// "urgent" DND exception.
var urgentKeywords = []string{
	"urgent", "asap", "as soon as possible", "immediately", "immediate", "right away",
	"deadline", "due today", "due now", "action required", "action needed",
	"time sensitive", "time-sensitive", "expires today", "expiring today",
	"critical", "emergency", "emergencies", "rush", "hurry",
}

// importantKeywords raise priority by 1, only checked when no urgent keyword
// matched.
var importantKeywords = []string{
	"important", "priority", "attention", "required", "must", "need", "needed",
	"please respond", "please reply", "response needed", "reply needed",
	"confirmation required", "verification needed", "approval needed",
}

// nonHumanMarkers flag automated senders from the address or subject alone.
var nonHumanMarkers = []string{
	"noreply", "no-reply", "donotreply", "do not reply", "do-not-reply",
	"no_reply", "noreply@", "no-reply@", "donotreply@",
	"bot@", "automation@", "system@", "mailer@", "mailer-daemon",
	"postmaster@", "mail delivery", "automated", "automatic",
}

// autoReplyPhrases are checked against the first body line by the deep
// non-human check only, never on the main classification path.
var autoReplyPhrases = []string{
	"this is an automated", "this email was sent automatically",
	"please do not reply", "do not reply to this email",
	"delivery failure", "delivery status", "undeliverable", "bounce",
	"out of office", "out-of-office", "automatic reply", "auto-reply",
}

// transactionalDomains are bulk/transactional mail providers whose mail is
// never human-authored.
var transactionalDomains = []string{
	"mailchimp.com", "constantcontact.com", "sendgrid.net", "mandrillapp.com",
	"amazonaws.com", "salesforce.com", "hubspot.com", "marketo.com",
}

// newsletterMarkers flag bulk newsletters from sender or subject alone.
var newsletterMarkers = []string{
	"unsubscribe", "newsletter", "noreply", "no-reply", "donotreply",
	"mailing list", "mailchimp", "constant contact",
}

// containsAny reports whether text contains any of the given substrings.
// Matching is plain substring containment, not word-boundary matching.
func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}
