package triage

import (
	"strings"

	"triage_server/core/domain"
)

// =============================================================================
// Category Scorer
// =============================================================================

// Scoring weights. Domain matches are independent of text length and dominate;
// subject keywords outweigh sender/body keywords.
const (
	weightDomain  = 10
	weightSubject = 3
	weightSender  = 2
	weightBody    = 2
)

// Evidence is the text scope for one scoring pass. All fields must already be
// lower-cased; BodyScope may be empty for subject-only passes.
type Evidence struct {
	Domain          string
	SenderLocalPart string
	Subject         string
	BodyScope       string
}

// scoreResult is one category's outcome for a given evidence scope.
type scoreResult struct {
	category     domain.Category
	score        float64
	basePriority int
	autoDelete   bool
}

// scoreCategory computes a single category's score against the evidence.
func scoreCategory(def *domain.CategoryDefinition, ev *Evidence) float64 {
	var score float64

	// Domain match first: substring, ".suffix" or exact.
	for _, d := range def.Domains {
		ld := strings.ToLower(d)
		if strings.Contains(ev.Domain, ld) || strings.HasSuffix(ev.Domain, "."+ld) || ev.Domain == ld {
			score += weightDomain
			break
		}
	}

	for _, kw := range def.Keywords {
		lkw := strings.ToLower(kw)
		if lkw == "" {
			continue
		}
		if strings.Contains(ev.Subject, lkw) {
			score += weightSubject
		}
		if strings.Contains(ev.SenderLocalPart, lkw) {
			score += weightSender
		}
		if ev.BodyScope != "" && strings.Contains(ev.BodyScope, lkw) {
			score += weightBody
		}
	}

	return score
}

// scoreBestMatch scores every registry category against the evidence and
// returns the best match. auth-codes and promo are singleton categories owned
// by the quick filters and are never scored. Ties keep the first category in
// registry order; no match at all yields the "other" sentinel with score 0.
func scoreBestMatch(registry *domain.Registry, ev *Evidence) scoreResult {
	best := scoreResult{category: domain.CategoryOther, score: 0, basePriority: 1}

	for i := range registry.Definitions() {
		def := &registry.Definitions()[i]
		if def.Name == domain.CategoryAuthCodes || def.Name == domain.CategoryPromo {
			continue
		}

		score := scoreCategory(def, ev)
		if score > best.score {
			best = scoreResult{
				category:     def.Name,
				score:        score,
				basePriority: def.BasePriority,
				autoDelete:   def.AutoDelete,
			}
			if best.basePriority == 0 {
				best.basePriority = 1
			}
		}
	}

	return best
}

// splitSender splits a lower-cased address into local part and domain.
// Malformed addresses yield empty parts rather than errors.
func splitSender(from string) (local, dom string) {
	at := strings.IndexByte(from, '@')
	if at < 0 {
		return from, ""
	}
	return from[:at], from[at+1:]
}
