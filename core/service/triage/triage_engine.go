package triage

import (
	"strings"

	"triage_server/core/domain"
)

// =============================================================================
// Triage Engine
// =============================================================================

// Fixed confidences for the quick-filter short circuits. They sit above the
// escalation threshold so short-circuited mail reads as high confidence.
const (
	confidenceNonHuman   = 20
	confidenceAuthCode   = 15
	confidenceNewsletter = 10
)

// Engine classifies emails against an immutable category registry. All
// methods are pure functions of their inputs; an Engine is safe for
// concurrent use.
type Engine struct {
	registry *domain.Registry
	history  HistoryAdjuster
}

// EngineDeps holds dependencies for creating an Engine.
type EngineDeps struct {
	Registry *domain.Registry
	History  HistoryAdjuster
}

// NewEngine creates an engine. A nil registry falls back to the built-in
// category table, a nil history adjuster to the no-op passthrough.
func NewEngine(deps *EngineDeps) *Engine {
	e := &Engine{
		registry: domain.DefaultRegistry(),
		history:  NoopHistoryAdjuster{},
	}
	if deps != nil {
		if deps.Registry != nil {
			e.registry = deps.Registry
		}
		if deps.History != nil {
			e.history = deps.History
		}
	}
	return e
}

// WithRegistry returns an engine sharing this one's history adjuster but
// scoring against a different registry (e.g. with per-user overrides applied).
func (e *Engine) WithRegistry(registry *domain.Registry) *Engine {
	if registry == nil {
		return e
	}
	return &Engine{registry: registry, history: e.history}
}

// Classify assigns a category, priority and confidence to one email. It never
// fails: missing fields are treated as empty strings and the worst outcome is
// the "other" sentinel with confidence 0.
func (e *Engine) Classify(email *domain.EmailRecord) *domain.ClassificationResult {
	if email == nil {
		return &domain.ClassificationResult{Category: domain.CategoryOther, Priority: 1}
	}

	from := strings.ToLower(email.From)
	subject := strings.ToLower(email.Subject)

	// Quick filters first, cheapest signals only.
	if isNonHumanQuick(from, subject) {
		return &domain.ClassificationResult{
			Category:   domain.CategoryOther,
			Priority:   1,
			Confidence: confidenceNonHuman,
			IsNonHuman: true,
		}
	}

	if isAuthCode(subject) {
		return &domain.ClassificationResult{
			Category:   domain.CategoryAuthCodes,
			Priority:   1,
			Confidence: confidenceAuthCode,
			AutoDelete: e.autoDelete(domain.CategoryAuthCodes),
		}
	}

	// Billing mail often arrives through newsletter infrastructure; keep the
	// newsletter flag but let it go through scoring instead of the promo
	// short circuit.
	isNewsletter := isNewsletterQuick(from, subject)
	if isNewsletter &&
		!strings.Contains(subject, "invoice") &&
		!strings.Contains(subject, "payment") &&
		!strings.Contains(subject, "receipt") {
		return &domain.ClassificationResult{
			Category:     domain.CategoryPromo,
			Priority:     1,
			Confidence:   confidenceNewsletter,
			IsNewsletter: true,
			AutoDelete:   e.autoDelete(domain.CategoryPromo),
		}
	}

	best := escalate(e.registry, from, subject, strings.ToLower(email.Body))
	priority := adjustPriority(email, best, subject, e.history)

	return &domain.ClassificationResult{
		Category:     best.category,
		Priority:     priority,
		Confidence:   best.score,
		IsNewsletter: isNewsletter,
		IsNonHuman:   email.IsNonHuman,
		AutoDelete:   best.autoDelete,
	}
}

// autoDelete returns the registry's auto-delete flag for a category.
func (e *Engine) autoDelete(name domain.Category) bool {
	def, ok := e.registry.Lookup(name)
	return ok && def.AutoDelete
}

// =============================================================================
// Priority Colors
// =============================================================================

// priorityColors maps priority to its UI color token.
var priorityColors = map[int]string{
	5: "#FF0000", // red - urgent
	4: "#FF8C00", // orange - high
	3: "#FFD700", // yellow - medium-high
	2: "#90EE90", // light green - medium
	1: "#006400", // dark green - low
}

// PriorityColor returns the color token for a priority. Unknown priorities
// fall back to the color for 1.
func PriorityColor(priority int) string {
	if c, ok := priorityColors[priority]; ok {
		return c
	}
	return priorityColors[1]
}
