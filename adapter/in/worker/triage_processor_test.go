package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"triage_server/core/domain"
	"triage_server/core/service/pipeline"
)

// fakeRepo hands out a fixed backlog and records upserts.
type fakeRepo struct {
	mu       sync.Mutex
	backlog  []*domain.EmailRecord
	upserted []*domain.EmailRecord
}

func (f *fakeRepo) GetByID(_ context.Context, _ uuid.UUID, _ string) (*domain.EmailRecord, error) {
	return nil, domain.ErrEmailNotFound
}

func (f *fakeRepo) List(_ context.Context, _ *domain.EmailFilter) ([]*domain.EmailRecord, error) {
	return nil, nil
}

func (f *fakeRepo) Count(_ context.Context, _ *domain.EmailFilter) (int, error) {
	return 0, nil
}

func (f *fakeRepo) ListUnprocessed(_ context.Context, _ uuid.UUID, _ time.Time, limit int) ([]*domain.EmailRecord, error) {
	if limit > len(f.backlog) {
		limit = len(f.backlog)
	}
	return f.backlog[:limit], nil
}

func (f *fakeRepo) ListBacklogUsers(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	if len(f.backlog) == 0 {
		return nil, nil
	}
	return []uuid.UUID{f.backlog[0].UserID}, nil
}

func (f *fakeRepo) Upsert(_ context.Context, email *domain.EmailRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, email)
	return nil
}

func (f *fakeRepo) UpsertBatch(_ context.Context, emails []*domain.EmailRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, emails...)
	return nil
}

// fakeCache serves canned results for selected IDs.
type fakeCache struct {
	mu      sync.Mutex
	results map[string]*domain.ClassificationResult
	stored  map[string]*domain.ClassificationResult
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		results: make(map[string]*domain.ClassificationResult),
		stored:  make(map[string]*domain.ClassificationResult),
	}
}

func (f *fakeCache) Get(_ context.Context, _ uuid.UUID, emailID string) (*domain.ClassificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[emailID], nil
}

func (f *fakeCache) Set(_ context.Context, _ uuid.UUID, emailID string, result *domain.ClassificationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[emailID] = result
	return nil
}

func backlogEmails(userID uuid.UUID, n int) []*domain.EmailRecord {
	emails := make([]*domain.EmailRecord, n)
	for i := range emails {
		emails[i] = &domain.EmailRecord{
			ID:      string(rune('a' + i%26)) + uuid.NewString(),
			UserID:  userID,
			From:    "billing@chase.com",
			Subject: "Your statement is ready",
		}
	}
	return emails
}

func TestProcessChunk(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{}
	cache := newFakeCache()
	p := NewProcessor(repo, pipeline.New(pipeline.Deps{}), cache, nil, zerolog.Nop())

	emails := []*domain.EmailRecord{
		{ID: "e1", UserID: userID, From: "billing@chase.com", Subject: "Your statement is ready, balance due"},
		{ID: "e2", UserID: userID, From: "noreply@system.io", Subject: "nightly job done"},
	}

	err := p.processChunk(context.Background(), &chunk{
		userID:  userID,
		emails:  emails,
		started: time.Now(),
	})
	if err != nil {
		t.Fatalf("processChunk() error = %v", err)
	}

	if len(repo.upserted) != 2 {
		t.Fatalf("upserted %d records, want 2", len(repo.upserted))
	}
	if emails[0].Category != domain.CategoryFinance {
		t.Errorf("e1 category = %v, want finance", emails[0].Category)
	}
	if !emails[1].IsNonHuman || emails[1].Priority != 1 {
		t.Errorf("e2 = %+v, want non-human priority 1", emails[1])
	}
	for _, e := range emails {
		if e.ProcessedAt == nil {
			t.Errorf("%s missing processedAt stamp", e.ID)
		}
		if e.Tab == "" {
			t.Errorf("%s missing tab assignment", e.ID)
		}
	}
	if len(cache.stored) != 2 {
		t.Errorf("cached %d results, want 2", len(cache.stored))
	}
}

func TestProcessChunkSkipsFreshCache(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{}
	cache := newFakeCache()
	cache.results["e1"] = &domain.ClassificationResult{
		Category: domain.CategoryWork,
		Priority: 4,
	}
	p := NewProcessor(repo, pipeline.New(pipeline.Deps{}), cache, nil, zerolog.Nop())

	emails := []*domain.EmailRecord{
		{ID: "e1", UserID: userID, From: "someone@example.com", Subject: "hello"},
	}
	if err := p.processChunk(context.Background(), &chunk{userID: userID, emails: emails, started: time.Now()}); err != nil {
		t.Fatalf("processChunk() error = %v", err)
	}

	// The cached work-current result sticks; scoring would have said "other".
	if emails[0].Category != domain.CategoryWork || emails[0].Priority != 4 {
		t.Errorf("e1 = %v/%d, want cached work-current/4", emails[0].Category, emails[0].Priority)
	}
	if got := p.Metrics().EmailsSkipped; got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
	if len(cache.stored) != 0 {
		t.Errorf("cache writes = %d, want 0", len(cache.stored))
	}
}

func TestEnqueueChunksBacklog(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{backlog: backlogEmails(userID, 120)}
	cfg := DefaultProcessorConfig()
	cfg.MaxWorkers = 2
	p := NewProcessor(repo, pipeline.New(pipeline.Deps{}), nil, cfg, zerolog.Nop())

	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	queued, err := p.Enqueue(context.Background(), userID)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if queued != 120 {
		t.Errorf("queued = %d, want 120", queued)
	}

	// Stop drains the pool before returning.
	p.Stop()

	if len(repo.upserted) != 120 {
		t.Errorf("upserted = %d, want 120", len(repo.upserted))
	}
	m := p.Metrics()
	if m.ChunksProcessed != 3 {
		t.Errorf("chunks = %d, want 3 (50+50+20)", m.ChunksProcessed)
	}
	if m.EmailsProcessed != 120 {
		t.Errorf("emails processed = %d, want 120", m.EmailsProcessed)
	}
}

func TestEnqueueBeforeStart(t *testing.T) {
	p := NewProcessor(&fakeRepo{backlog: backlogEmails(uuid.New(), 5)}, pipeline.New(pipeline.Deps{}), nil, nil, zerolog.Nop())

	queued, err := p.Enqueue(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if queued != 0 {
		t.Errorf("queued = %d, want 0 before Start", queued)
	}
}
