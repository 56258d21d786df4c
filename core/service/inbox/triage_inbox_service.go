package inbox

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"triage_server/core/domain"
)

// =============================================================================
// Reply-Queue Views
// =============================================================================

// queueMinPriority is the floor for the reply queue; missedMinPriority for
// the missed list.
const (
	queueMinPriority  = 4
	missedMinPriority = 3
	lowMaxPriority    = 3
)

// Service answers the view queries over the classified-email store. The clock
// is injectable for the day-boundary views.
type Service struct {
	repo domain.EmailRepository
	now  func() time.Time
}

func NewService(repo domain.EmailRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock returns a service using the given clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	return &Service{repo: s.repo, now: now}
}

// Get returns one stored record scoped to its owner, or
// domain.ErrEmailNotFound.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, id string) (*domain.EmailRecord, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Queue returns the reply queue: priority >= 4, or exactly the given priority
// when exact is non-nil. Low-value mail never appears.
func (s *Service) Queue(ctx context.Context, userID uuid.UUID, exact *int) ([]*domain.EmailRecord, error) {
	filter := &domain.EmailFilter{
		UserID:          userID,
		ExcludeLowValue: true,
	}
	if exact != nil {
		filter.Priority = exact
	} else {
		min := queueMinPriority
		filter.MinPriority = &min
	}

	emails, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	SortByPriority(emails)
	return emails, nil
}

// Missed returns unread mail from before today with priority >= 3. Records
// without a date never qualify.
func (s *Service) Missed(ctx context.Context, userID uuid.UUID) ([]*domain.EmailRecord, error) {
	startOfToday := dayStart(s.now())
	unread := true
	min := missedMinPriority

	emails, err := s.repo.List(ctx, &domain.EmailFilter{
		UserID:          userID,
		ExcludeLowValue: true,
		Unread:          &unread,
		MinPriority:     &min,
		DateTo:          &startOfToday,
	})
	if err != nil {
		return nil, err
	}
	emails = withDates(emails)
	SortByPriority(emails)
	return emails, nil
}

// Today returns mail received today, any priority, low-value excluded.
func (s *Service) Today(ctx context.Context, userID uuid.UUID) ([]*domain.EmailRecord, error) {
	startOfToday := dayStart(s.now())
	startOfTomorrow := startOfToday.Add(24 * time.Hour)

	emails, err := s.repo.List(ctx, &domain.EmailFilter{
		UserID:          userID,
		ExcludeLowValue: true,
		DateFrom:        &startOfToday,
		DateTo:          &startOfTomorrow,
	})
	if err != nil {
		return nil, err
	}
	emails = withDates(emails)
	SortByPriority(emails)
	return emails, nil
}

// lowValueDefaultLimit bounds a LowValue page when the caller passes no limit.
const lowValueDefaultLimit = 50

// LowValue returns one page of the non-important bucket: priority <= 3,
// category "other" or non-human senders. The bucket is unbounded, so paging
// happens in the store; the second return value is the bucket's full size.
func (s *Service) LowValue(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.EmailRecord, int, error) {
	if limit <= 0 {
		limit = lowValueDefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	filter := &domain.EmailFilter{
		UserID:          userID,
		IncludeLowValue: true,
		Limit:           limit,
		Offset:          offset,
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	emails, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	SortByPriority(emails)
	return emails, total, nil
}

// SortByPriority orders emails by priority descending, then by processedAt
// descending. Records without processedAt sort last within their priority.
// Stable, so equal records keep their stored order.
func SortByPriority(emails []*domain.EmailRecord) {
	sort.SliceStable(emails, func(i, j int) bool {
		if emails[i].Priority != emails[j].Priority {
			return emails[i].Priority > emails[j].Priority
		}
		return processedAt(emails[i]).After(processedAt(emails[j]))
	})
}

func processedAt(e *domain.EmailRecord) time.Time {
	if e.ProcessedAt == nil {
		return time.Time{}
	}
	return *e.ProcessedAt
}

// dayStart truncates t to local midnight.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// withDates drops records carrying no date at all; the day-boundary views
// cannot place them.
func withDates(emails []*domain.EmailRecord) []*domain.EmailRecord {
	out := emails[:0]
	for _, e := range emails {
		if !e.Date.IsZero() {
			out = append(out, e)
		}
	}
	return out
}
