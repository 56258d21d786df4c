package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"triage_server/core/domain"
	"triage_server/core/service/triage"
)

// fakeSettings serves fixed overrides and rules for every user.
type fakeSettings struct {
	overrides []domain.CategoryOverride
	rules     []domain.DNDRule
}

func (f *fakeSettings) GetDNDRules(_ context.Context, _ uuid.UUID) ([]domain.DNDRule, error) {
	return f.rules, nil
}

func (f *fakeSettings) SaveDNDRules(_ context.Context, _ uuid.UUID, rules []domain.DNDRule) error {
	f.rules = rules
	return nil
}

func (f *fakeSettings) GetCategoryOverrides(_ context.Context, _ uuid.UUID) ([]domain.CategoryOverride, error) {
	return f.overrides, nil
}

func (f *fakeSettings) SaveCategoryOverrides(_ context.Context, _ uuid.UUID, overrides []domain.CategoryOverride) error {
	f.overrides = overrides
	return nil
}

func intPtr(v int) *int { return &v }

func TestRunMergesResultOntoRecord(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC)
	p := New(Deps{}).WithClock(func() time.Time { return fixed })

	email := &domain.EmailRecord{
		ID:      "e1",
		UserID:  uuid.New(),
		From:    "billing@chase.com",
		Subject: "Your statement is ready",
		Body:    "Balance due $245.00 by 5/10/2025.",
		Date:    fixed,
		Unread:  true,
	}

	result, err := p.RunOne(context.Background(), email)
	if err != nil {
		t.Fatalf("RunOne: %v", err)
	}

	if result.Category != domain.CategoryFinance {
		t.Fatalf("category = %s, want finance", result.Category)
	}
	if email.Category != result.Category || email.Priority != result.Priority {
		t.Errorf("record not updated from result: %+v", email)
	}
	if email.Tab == "" {
		t.Error("tab not assigned")
	}
	if email.ProcessedAt == nil || !email.ProcessedAt.Equal(fixed) {
		t.Errorf("processedAt = %v, want %v", email.ProcessedAt, fixed)
	}
	if email.ImportantInfo == nil {
		t.Fatal("expected extracted info for money and date mentions")
	}
	if len(email.ImportantInfo.Money) == 0 {
		t.Errorf("money = %v, want $245.00 captured", email.ImportantInfo.Money)
	}
}

func TestRunClearsEmptyInfo(t *testing.T) {
	p := New(Deps{})

	email := &domain.EmailRecord{
		ID:            "e2",
		UserID:        uuid.New(),
		From:          "friend@gmail.com",
		Subject:       "hey",
		Body:          "long time no see",
		ImportantInfo: &domain.ImportantInfo{Money: []string{"$1"}},
	}

	p.Run(nil, email)
	if email.ImportantInfo != nil {
		t.Errorf("stale info not cleared: %+v", email.ImportantInfo)
	}
}

func TestLoadUserContextAppliesOverrides(t *testing.T) {
	settings := &fakeSettings{
		overrides: []domain.CategoryOverride{
			{Category: domain.CategoryWork, BasePriority: intPtr(1)},
		},
	}
	p := New(Deps{Settings: settings})
	userID := uuid.New()

	uc, err := p.LoadUserContext(context.Background(), userID)
	if err != nil {
		t.Fatalf("LoadUserContext: %v", err)
	}

	lowered := &domain.EmailRecord{
		ID: "e3", UserID: userID,
		From:    "boss@mycompany.com",
		Subject: "project meeting notes",
	}
	baseline := *lowered

	overridden := p.Run(uc, lowered)
	plain := p.Run(nil, &baseline)
	if overridden.Category != domain.CategoryWork || plain.Category != domain.CategoryWork {
		t.Fatalf("categories = %s/%s, want work", overridden.Category, plain.Category)
	}
	if overridden.Priority >= plain.Priority {
		t.Errorf("override priority = %d, want below default %d", overridden.Priority, plain.Priority)
	}
}

func TestRunAppliesDNDRules(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 23, 30, 0, 0, time.UTC)
	settings := &fakeSettings{
		rules: []domain.DNDRule{
			{Enabled: true, TimeStart: intPtr(22), TimeEnd: intPtr(7)},
		},
	}
	dnd := triage.NewDNDEvaluator().WithClock(func() time.Time { return fixed })
	p := New(Deps{DND: dnd, Settings: settings})

	email := &domain.EmailRecord{
		ID: "e4", UserID: uuid.New(),
		From:    "friend@gmail.com",
		Subject: "hey",
		Date:    fixed,
	}

	uc, err := p.LoadUserContext(context.Background(), email.UserID)
	if err != nil {
		t.Fatalf("LoadUserContext: %v", err)
	}
	p.Run(uc, email)
	if !email.IsDND {
		t.Error("expected suppression inside the 22-7 window")
	}
}
