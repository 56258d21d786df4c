package inbox

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"triage_server/core/domain"
)

// fakeEmailRepo applies EmailFilter in memory, mirroring the store's
// contract closely enough for view tests.
type fakeEmailRepo struct {
	emails []*domain.EmailRecord
}

func (f *fakeEmailRepo) GetByID(_ context.Context, userID uuid.UUID, id string) (*domain.EmailRecord, error) {
	for _, e := range f.emails {
		if e.UserID == userID && e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrEmailNotFound
}

func matchesFilter(e *domain.EmailRecord, filter *domain.EmailFilter) bool {
	if e.UserID != filter.UserID {
		return false
	}
	lowValue := e.Category == domain.CategoryOther || e.IsNonHuman
	if filter.ExcludeLowValue && lowValue {
		return false
	}
	if filter.IncludeLowValue && !(lowValue || e.Priority <= 3) {
		return false
	}
	if filter.Priority != nil && e.Priority != *filter.Priority {
		return false
	}
	if filter.MinPriority != nil && e.Priority < *filter.MinPriority {
		return false
	}
	if filter.MaxPriority != nil && e.Priority > *filter.MaxPriority {
		return false
	}
	if filter.Unread != nil && e.Unread != *filter.Unread {
		return false
	}
	if filter.DateFrom != nil && e.Date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && !e.Date.Before(*filter.DateTo) {
		return false
	}
	return true
}

func (f *fakeEmailRepo) List(_ context.Context, filter *domain.EmailFilter) ([]*domain.EmailRecord, error) {
	var out []*domain.EmailRecord
	for _, e := range f.emails {
		if matchesFilter(e, filter) {
			out = append(out, e)
		}
	}
	// Paging slices the stored order like the SQL ORDER BY does.
	SortByPriority(out)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeEmailRepo) Count(_ context.Context, filter *domain.EmailFilter) (int, error) {
	n := 0
	for _, e := range f.emails {
		if matchesFilter(e, filter) {
			n++
		}
	}
	return n, nil
}

func (f *fakeEmailRepo) ListUnprocessed(_ context.Context, _ uuid.UUID, _ time.Time, _ int) ([]*domain.EmailRecord, error) {
	return nil, nil
}

func (f *fakeEmailRepo) ListBacklogUsers(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeEmailRepo) Upsert(_ context.Context, email *domain.EmailRecord) error {
	f.emails = append(f.emails, email)
	return nil
}

func (f *fakeEmailRepo) UpsertBatch(_ context.Context, emails []*domain.EmailRecord) error {
	f.emails = append(f.emails, emails...)
	return nil
}

func tp(t time.Time) *time.Time { return &t }

func testEmails(userID uuid.UUID, now time.Time) []*domain.EmailRecord {
	yesterday := now.Add(-24 * time.Hour)
	return []*domain.EmailRecord{
		{ID: "m1", UserID: userID, Category: domain.CategoryWork, Priority: 5, Date: now, Unread: true, ProcessedAt: tp(now)},
		{ID: "m2", UserID: userID, Category: domain.CategoryFinance, Priority: 4, Date: now, ProcessedAt: tp(now.Add(-time.Hour))},
		{ID: "m3", UserID: userID, Category: domain.CategorySchool, Priority: 3, Date: yesterday, Unread: true, ProcessedAt: tp(yesterday)},
		{ID: "m4", UserID: userID, Category: domain.CategoryPersonal, Priority: 2, Date: now, ProcessedAt: tp(now)},
		{ID: "m5", UserID: userID, Category: domain.CategoryOther, Priority: 5, Date: now, Unread: true, ProcessedAt: tp(now)},
		{ID: "m6", UserID: userID, Category: domain.CategoryWork, Priority: 5, Date: yesterday, IsNonHuman: true, ProcessedAt: tp(now)},
		{ID: "m7", UserID: userID, Category: domain.CategoryWork, Priority: 4, Date: yesterday, Unread: true, ProcessedAt: tp(now)},
	}
}

func ids(emails []*domain.EmailRecord) []string {
	out := make([]string, len(emails))
	for i, e := range emails {
		out[i] = e.ID
	}
	return out
}

func equalIDs(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGet(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC)
	svc := NewService(&fakeEmailRepo{emails: testEmails(userID, now)})

	t.Run("found", func(t *testing.T) {
		email, err := svc.Get(context.Background(), userID, "m3")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if email.ID != "m3" {
			t.Errorf("id = %s, want m3", email.ID)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := svc.Get(context.Background(), userID, "nope"); err != domain.ErrEmailNotFound {
			t.Errorf("err = %v, want ErrEmailNotFound", err)
		}
	})

	t.Run("other user's id", func(t *testing.T) {
		if _, err := svc.Get(context.Background(), uuid.New(), "m3"); err != domain.ErrEmailNotFound {
			t.Errorf("err = %v, want ErrEmailNotFound", err)
		}
	})
}

func TestQueueView(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC)
	svc := NewService(&fakeEmailRepo{emails: testEmails(userID, now)}).
		WithClock(func() time.Time { return now })

	t.Run("default threshold", func(t *testing.T) {
		emails, err := svc.Queue(context.Background(), userID, nil)
		if err != nil {
			t.Fatalf("Queue() error = %v", err)
		}
		// m5 (other) and m6 (non-human) are excluded despite high priority;
		// within priority 4, m7's later processedAt sorts first.
		want := []string{"m1", "m7", "m2"}
		if got := ids(emails); !equalIDs(got, want) {
			t.Errorf("queue = %v, want %v", got, want)
		}
	})

	t.Run("exact priority filter", func(t *testing.T) {
		four := 4
		emails, err := svc.Queue(context.Background(), userID, &four)
		if err != nil {
			t.Fatalf("Queue() error = %v", err)
		}
		want := []string{"m7", "m2"}
		if got := ids(emails); !equalIDs(got, want) {
			t.Errorf("queue(4) = %v, want %v", got, want)
		}
	})

	t.Run("other users see nothing", func(t *testing.T) {
		emails, err := svc.Queue(context.Background(), uuid.New(), nil)
		if err != nil {
			t.Fatalf("Queue() error = %v", err)
		}
		if len(emails) != 0 {
			t.Errorf("queue for stranger = %v, want empty", ids(emails))
		}
	})
}

func TestMissedView(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC)
	svc := NewService(&fakeEmailRepo{emails: testEmails(userID, now)}).
		WithClock(func() time.Time { return now })

	emails, err := svc.Missed(context.Background(), userID)
	if err != nil {
		t.Fatalf("Missed() error = %v", err)
	}
	// Only unread pre-today mail with priority >= 3: m7 then m3. m6 is
	// non-human, m1/m2/m4/m5 are from today or read or low-value.
	want := []string{"m7", "m3"}
	if got := ids(emails); !equalIDs(got, want) {
		t.Errorf("missed = %v, want %v", got, want)
	}
}

func TestTodayView(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC)
	svc := NewService(&fakeEmailRepo{emails: testEmails(userID, now)}).
		WithClock(func() time.Time { return now })

	emails, err := svc.Today(context.Background(), userID)
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	want := []string{"m1", "m2", "m4"}
	if got := ids(emails); !equalIDs(got, want) {
		t.Errorf("today = %v, want %v", got, want)
	}
}

func TestLowValueView(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC)
	svc := NewService(&fakeEmailRepo{emails: testEmails(userID, now)}).
		WithClock(func() time.Time { return now })

	emails, total, err := svc.LowValue(context.Background(), userID, 0, 0)
	if err != nil {
		t.Fatalf("LowValue() error = %v", err)
	}
	// m5 and m6 qualify by category/non-human despite priority 5; m3 and m4
	// by priority. Priority-descending order with processedAt tiebreak.
	want := []string{"m5", "m6", "m3", "m4"}
	if got := ids(emails); !equalIDs(got, want) {
		t.Errorf("lowValue = %v, want %v", got, want)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
}

// TestLowValuePagination checks that paging happens in the store and the
// total reflects the whole bucket, not the fetched page.
func TestLowValuePagination(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC)
	svc := NewService(&fakeEmailRepo{emails: testEmails(userID, now)}).
		WithClock(func() time.Time { return now })

	t.Run("first page", func(t *testing.T) {
		emails, total, err := svc.LowValue(context.Background(), userID, 2, 0)
		if err != nil {
			t.Fatalf("LowValue() error = %v", err)
		}
		want := []string{"m5", "m6"}
		if got := ids(emails); !equalIDs(got, want) {
			t.Errorf("page 1 = %v, want %v", got, want)
		}
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
	})

	t.Run("second page continues past the first", func(t *testing.T) {
		emails, total, err := svc.LowValue(context.Background(), userID, 2, 2)
		if err != nil {
			t.Fatalf("LowValue() error = %v", err)
		}
		want := []string{"m3", "m4"}
		if got := ids(emails); !equalIDs(got, want) {
			t.Errorf("page 2 = %v, want %v", got, want)
		}
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
	})

	t.Run("offset past the end is empty but keeps the total", func(t *testing.T) {
		emails, total, err := svc.LowValue(context.Background(), userID, 2, 10)
		if err != nil {
			t.Fatalf("LowValue() error = %v", err)
		}
		if len(emails) != 0 {
			t.Errorf("page = %v, want empty", ids(emails))
		}
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
	})
}

func TestSortWithoutProcessedAt(t *testing.T) {
	emails := []*domain.EmailRecord{
		{ID: "a", Priority: 4},
		{ID: "b", Priority: 4, ProcessedAt: tp(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))},
	}
	SortByPriority(emails)

	if emails[0].ID != "b" {
		t.Errorf("first = %s, want b (missing processedAt sorts last)", emails[0].ID)
	}
}
