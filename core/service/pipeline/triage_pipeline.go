// Package pipeline runs the full triage of one email record: per-user
// registry overrides, classification, tab assignment, info extraction and
// DND evaluation, merged back onto the record.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"triage_server/core/domain"
	"triage_server/core/service/inbox"
	"triage_server/core/service/triage"
)

// Pipeline orchestrates the pure engine with per-user settings. Safe for
// concurrent use; per-call state lives on the stack.
type Pipeline struct {
	engine   *triage.Engine
	dnd      *triage.DNDEvaluator
	settings domain.SettingsRepository
	now      func() time.Time
}

// Deps holds pipeline dependencies. Settings may be nil, in which case the
// built-in registry and no DND rules apply.
type Deps struct {
	Engine   *triage.Engine
	DND      *triage.DNDEvaluator
	Settings domain.SettingsRepository
}

func New(deps Deps) *Pipeline {
	p := &Pipeline{
		engine:   deps.Engine,
		dnd:      deps.DND,
		settings: deps.Settings,
		now:      time.Now,
	}
	if p.engine == nil {
		p.engine = triage.NewEngine(nil)
	}
	if p.dnd == nil {
		p.dnd = triage.NewDNDEvaluator()
	}
	return p
}

// WithClock returns a pipeline stamping processedAt from the given clock.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	cp := *p
	cp.now = now
	return &cp
}

// UserContext is the per-user state the pipeline needs: the (possibly
// overridden) engine and the stored DND rules. Load it once per batch.
type UserContext struct {
	engine *triage.Engine
	rules  []domain.DNDRule
}

// LoadUserContext fetches a user's overrides and DND rules. Missing settings
// fall back to defaults rather than failing the batch.
func (p *Pipeline) LoadUserContext(ctx context.Context, userID uuid.UUID) (*UserContext, error) {
	uc := &UserContext{engine: p.engine}
	if p.settings == nil {
		return uc, nil
	}

	overrides, err := p.settings.GetCategoryOverrides(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		uc.engine = p.engine.WithRegistry(domain.DefaultRegistry().WithOverrides(overrides))
	}

	rules, err := p.settings.GetDNDRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	uc.rules = rules
	return uc, nil
}

// Run triages one record in place and returns the classification outcome.
func (p *Pipeline) Run(uc *UserContext, email *domain.EmailRecord) *domain.ClassificationResult {
	engine := p.engine
	var rules []domain.DNDRule
	if uc != nil {
		engine = uc.engine
		rules = uc.rules
	}

	result := engine.Classify(email)

	email.Category = result.Category
	email.Priority = result.Priority
	email.Confidence = result.Confidence
	email.IsNewsletter = result.IsNewsletter
	email.IsNonHuman = result.IsNonHuman
	email.Tab = inbox.DetectTab(email)
	email.IsDND = p.dnd.IsSuppressed(email, rules)

	if info := triage.ExtractImportantInfo(email); !info.Empty() {
		email.ImportantInfo = info
	} else {
		email.ImportantInfo = nil
	}

	processedAt := p.now()
	email.ProcessedAt = &processedAt

	return result
}

// RunOne is the single-email convenience used by the HTTP path: loads the
// user context and triages the record.
func (p *Pipeline) RunOne(ctx context.Context, email *domain.EmailRecord) (*domain.ClassificationResult, error) {
	uc, err := p.LoadUserContext(ctx, email.UserID)
	if err != nil {
		return nil, err
	}
	return p.Run(uc, email), nil
}
