package triage

import (
	"strings"

	"triage_server/core/domain"
)

// =============================================================================
// Escalation Controller
// =============================================================================

// confidenceThreshold is the score at which escalation stops widening its
// text scope.
const confidenceThreshold = 8

// fullBodyThreshold: only when the best score after the line scopes is still
// below this does the controller pay for a full-body scan.
const fullBodyThreshold = 3

// scopeBuilder produces the body scope for one escalation step from the
// email's non-blank body lines, or ("", false) when the step does not apply.
type scopeBuilder func(lines []string, body string) (string, bool)

// escalationScopes are the progressively larger body scopes, in the fixed
// order the controller walks them. Each step runs only while the best score
// is below the confidence threshold.
var escalationScopes = []scopeBuilder{
	func(lines []string, _ string) (string, bool) {
		if len(lines) < 1 {
			return "", false
		}
		return lines[0], true
	},
	func(lines []string, _ string) (string, bool) {
		if len(lines) < 2 {
			return "", false
		}
		return strings.Join(lines[:2], " "), true
	},
	func(lines []string, _ string) (string, bool) {
		if len(lines) < 3 {
			return "", false
		}
		return strings.Join(lines[:3], " "), true
	},
}

// nonBlankLines splits a body into lines and drops blank ones before
// counting "first N lines".
func nonBlankLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// escalate runs the scorer over progressively larger scopes, keeping the best
// result seen so far. The subject+sender pass always seeds the best result,
// so confidence never regresses as scope grows. The full body is a last
// resort, paid for only when everything else scored below fullBodyThreshold.
func escalate(registry *domain.Registry, from, subject, body string) scoreResult {
	local, dom := splitSender(from)
	ev := &Evidence{
		Domain:          dom,
		SenderLocalPart: local,
		Subject:         subject,
	}

	// Fast path: subject + sender only.
	best := scoreBestMatch(registry, ev)
	if best.score >= confidenceThreshold {
		return best
	}

	lines := nonBlankLines(body)
	for _, build := range escalationScopes {
		if best.score >= confidenceThreshold {
			break
		}
		scope, ok := build(lines, body)
		if !ok {
			continue
		}
		ev.BodyScope = scope
		if r := scoreBestMatch(registry, ev); r.score > best.score {
			best = r
		}
	}

	if best.score < fullBodyThreshold && body != "" {
		ev.BodyScope = body
		if r := scoreBestMatch(registry, ev); r.score > best.score {
			best = r
		}
	}

	return best
}
