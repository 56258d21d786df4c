package domain

// Category is one of the fixed triage buckets. CategoryOther is the sentinel
// for "no definition matched".
type Category string

const (
	CategorySchool    Category = "school"
	CategoryWork      Category = "work-current"
	CategoryJobs      Category = "work-opportunities"
	CategoryFinance   Category = "finance"
	CategoryPersonal  Category = "personal"
	CategoryAuthCodes Category = "auth-codes"
	CategoryPromo     Category = "promo"
	CategoryOther     Category = "other"
)

// Valid reports whether c is a known category (including the sentinel).
func (c Category) Valid() bool {
	switch c {
	case CategorySchool, CategoryWork, CategoryJobs, CategoryFinance,
		CategoryPersonal, CategoryAuthCodes, CategoryPromo, CategoryOther:
		return true
	}
	return false
}

// CategoryDefinition is the fixed-shape definition record for one category.
// Immutable, loaded once, shared read-only across all classification calls.
type CategoryDefinition struct {
	Name         Category `json:"name"`
	Keywords     []string `json:"keywords"`
	Domains      []string `json:"domains,omitempty"`
	BasePriority int      `json:"base_priority"` // 1..5, defaults to 1 when unset
	AutoDelete   bool     `json:"auto_delete,omitempty"`
}

// CategoryOverride lets a user tune a category's base priority or auto-delete
// behavior without touching its keyword set.
type CategoryOverride struct {
	Category     Category `json:"category"`
	BasePriority *int     `json:"base_priority,omitempty"`
	AutoDelete   *bool    `json:"auto_delete,omitempty"`
}

// Registry is the ordered set of category definitions. Order matters: scoring
// ties keep the first-encountered category, so iteration must be deterministic.
type Registry struct {
	defs []CategoryDefinition
}

// NewRegistry builds a registry from defs, preserving order.
func NewRegistry(defs []CategoryDefinition) *Registry {
	out := make([]CategoryDefinition, len(defs))
	copy(out, defs)
	return &Registry{defs: out}
}

// Definitions returns the definitions in registry order. Callers must not
// mutate the returned slice.
func (r *Registry) Definitions() []CategoryDefinition {
	return r.defs
}

// Lookup returns the definition for name, if present.
func (r *Registry) Lookup(name Category) (CategoryDefinition, bool) {
	for _, d := range r.defs {
		if d.Name == name {
			return d, true
		}
	}
	return CategoryDefinition{}, false
}

// WithOverrides returns a copy of the registry with per-category overrides
// applied. The receiver is not modified.
func (r *Registry) WithOverrides(overrides []CategoryOverride) *Registry {
	defs := make([]CategoryDefinition, len(r.defs))
	copy(defs, r.defs)
	for i := range defs {
		for _, o := range overrides {
			if o.Category != defs[i].Name {
				continue
			}
			if o.BasePriority != nil && *o.BasePriority >= 1 && *o.BasePriority <= 5 {
				defs[i].BasePriority = *o.BasePriority
			}
			if o.AutoDelete != nil {
				defs[i].AutoDelete = *o.AutoDelete
			}
		}
	}
	return &Registry{defs: defs}
}

// DefaultRegistry returns the built-in category table. auth-codes and promo
// are handled by quick filters and are skipped by the scorer, but they stay in
// the registry so their base priority and auto-delete flags have one home.
func DefaultRegistry() *Registry {
	return NewRegistry([]CategoryDefinition{
		{
			Name: CategorySchool,
			Keywords: []string{
				"university", "college", "professor", "prof", "assignment", "homework", "course",
				"syllabus", "campus", "edu", "education", "student", "class", "lecture",
				"exam", "test", "quiz", "midterm", "final", "grade", "grades", "gpa",
				"registration", "enrollment", "tuition", "financial aid", "scholarship",
				"blackboard", "canvas", "moodle", "coursework", "due date", "submission",
			},
			Domains:      []string{"edu", "school", "university", "college"},
			BasePriority: 3,
		},
		{
			Name: CategoryWork,
			Keywords: []string{
				"team", "meeting", "project", "deadline", "urgent", "asap", "standup", "sprint",
				"stand-up", "stand up", "sync", "sync up", "1:1", "one-on-one", "one on one",
				"review", "code review", "pr review", "pull request", "merge", "deploy",
				"sprint planning", "retrospective", "retro", "all hands", "all-hands",
				"slack", "jira", "confluence", "trello", "asana", "notion",
				"follow up", "follow-up", "action items", "action item", "todo", "to-do",
			},
			BasePriority: 4,
		},
		{
			Name: CategoryJobs,
			Keywords: []string{
				"opportunity", "job", "position", "recruiter", "hiring", "career", "interview", "linkedin",
				"job opening", "job opportunity", "we are hiring", "we're hiring", "hiring now",
				"apply now", "application", "resume", "cv", "curriculum vitae",
				"recruiting", "talent", "headhunter", "recruitment", "job search",
				"indeed", "glassdoor", "monster", "ziprecruiter", "angel.co", "angelist",
			},
			BasePriority: 3,
		},
		{
			Name: CategoryFinance,
			Keywords: []string{
				"payment", "invoice", "receipt", "transaction", "purchase", "charge", "charged",
				"bank", "banking", "account", "checking", "savings", "deposit", "withdrawal", "transfer",
				"credit card", "creditcard", "card ending", "card number", "expires",
				"statement", "balance", "account balance", "available balance", "account summary",
				"$", "dollar", "amount due", "balance due", "payment due", "minimum payment",
				"subscription", "renewal", "renew", "billing", "billed", "monthly", "annual", "yearly",
				"subscription fee", "membership", "auto-renew", "auto renew",
				"paypal", "stripe", "venmo", "zelle", "cash app", "square", "chase", "bank of america",
				"wells fargo", "citi", "american express", "amex", "discover", "capital one",
				"bill", "utility", "electric", "gas", "water", "phone bill", "internet bill",
				"alert", "notification", "reminder", "payment reminder", "overdue", "past due",
			},
			Domains: []string{
				"bank", "paypal", "stripe", "chase", "wellsfargo", "bofa", "citi", "amex",
				"discover", "capitalone", "venmo", "square", "billing", "invoice", "payment",
			},
			BasePriority: 4,
		},
		{
			Name: CategoryPersonal,
			Keywords: []string{
				"family", "friend", "friends", "birthday", "party", "weekend", "dinner",
				"lunch", "brunch", "coffee", "drinks", "happy hour", "celebration",
				"congratulations", "congrats", "wedding", "baby", "shower", "anniversary",
				"holiday", "vacation", "trip", "travel", "weekend plans", "get together",
				"catch up", "hang out", "hangout",
			},
			BasePriority: 2,
		},
		{
			Name: CategoryAuthCodes,
			Keywords: []string{
				"verification code", "security code", "login code", "one-time", "otp", "2fa",
			},
			BasePriority: 1,
			AutoDelete:   true,
		},
		{
			Name: CategoryPromo,
			Keywords: []string{
				"sale", "discount", "offer", "deal", "promo", "coupon", "subscribe", "unsubscribe",
				"limited time", "limited-time", "act now", "buy now", "shop now", "order now",
				"free shipping", "free trial", "special offer", "exclusive offer", "flash sale",
				"clearance", "savings", "save up to", "percent off", "% off", "off",
				"newsletter", "marketing", "promotional", "advertisement", "ad", "ads",
				"noreply", "no-reply", "donotreply", "do not reply", "mailing list",
			},
			BasePriority: 1,
			AutoDelete:   true,
		},
	})
}
