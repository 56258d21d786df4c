// Package worker runs the background batch classification over stored mail.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/pool"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"triage_server/core/domain"
	"triage_server/core/service/pipeline"
)

// =============================================================================
// Batch Classification Processor
// =============================================================================

// ProcessorConfig holds batch processor configuration.
type ProcessorConfig struct {
	BatchSize      int           // emails per chunk
	MaxWorkers     int           // concurrent chunk workers
	Staleness      time.Duration // re-classify results older than this
	FetchLimit     int           // backlog rows fetched per enqueue
	WorkerChanSize int
}

// DefaultProcessorConfig returns the default processor configuration.
func DefaultProcessorConfig() *ProcessorConfig {
	return &ProcessorConfig{
		BatchSize:      50,
		MaxWorkers:     4,
		Staleness:      time.Hour,
		FetchLimit:     500,
		WorkerChanSize: 16,
	}
}

// ResultCache is the cache the processor consults before re-classifying and
// fills after. Optional.
type ResultCache interface {
	Get(ctx context.Context, userID uuid.UUID, emailID string) (*domain.ClassificationResult, error)
	Set(ctx context.Context, userID uuid.UUID, emailID string, result *domain.ClassificationResult) error
}

// chunk is one unit of pool work: a single user's slice of stale records
// together with the user context loaded once for the whole chunk.
type chunk struct {
	userID  uuid.UUID
	uc      *pipeline.UserContext
	emails  []*domain.EmailRecord
	started time.Time
}

// ProcessorMetrics counts processor outcomes.
type ProcessorMetrics struct {
	ChunksProcessed int64
	EmailsProcessed int64
	EmailsSkipped   int64
	Failures        int64
}

// Processor drains the stale-classification backlog through a worker pool.
type Processor struct {
	repo     domain.EmailRepository
	pipeline *pipeline.Pipeline
	cache    ResultCache
	config   *ProcessorConfig
	log      zerolog.Logger

	pool   *pool.WorkerGroup[*chunk]
	ctx    context.Context
	cancel context.CancelFunc

	metrics ProcessorMetrics
	started bool
	mu      sync.Mutex
}

// chunkWorker implements pool.Worker for chunk processing.
type chunkWorker struct {
	p *Processor
}

// Do implements pool.Worker.
func (w *chunkWorker) Do(ctx context.Context, c *chunk) error {
	return w.p.processChunk(ctx, c)
}

// NewProcessor creates a batch processor.
func NewProcessor(repo domain.EmailRepository, pl *pipeline.Pipeline, cache ResultCache, config *ProcessorConfig, log zerolog.Logger) *Processor {
	if config == nil {
		config = DefaultProcessorConfig()
	}
	return &Processor{
		repo:     repo,
		pipeline: pl,
		cache:    cache,
		config:   config,
		log:      log.With().Str("component", "batch_processor").Logger(),
	}
}

// Start brings up the worker pool. Safe to call once.
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.pool = pool.New[*chunk](p.config.MaxWorkers, &chunkWorker{p: p}).
		WithWorkerChanSize(p.config.WorkerChanSize).
		WithContinueOnError()

	if err := p.pool.Go(p.ctx); err != nil {
		return err
	}
	p.started = true

	p.log.Info().
		Int("max_workers", p.config.MaxWorkers).
		Int("batch_size", p.config.BatchSize).
		Dur("staleness", p.config.Staleness).
		Msg("batch processor started")
	return nil
}

// Stop drains the pool and logs totals.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer closeCancel()
	if err := p.pool.Close(closeCtx); err != nil {
		p.log.Warn().Err(err).Msg("error closing processor pool")
	}
	p.cancel()

	p.log.Info().
		Int64("chunks", atomic.LoadInt64(&p.metrics.ChunksProcessed)).
		Int64("emails", atomic.LoadInt64(&p.metrics.EmailsProcessed)).
		Int64("skipped", atomic.LoadInt64(&p.metrics.EmailsSkipped)).
		Int64("failures", atomic.LoadInt64(&p.metrics.Failures)).
		Msg("batch processor stopped")
}

// Run polls for users with backlog and enqueues their records until ctx
// is cancelled. Intended for the standalone worker mode.
func (p *Processor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p.enqueueAll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Processor) enqueueAll(ctx context.Context) {
	staleBefore := time.Now().Add(-p.config.Staleness)
	users, err := p.repo.ListBacklogUsers(ctx, staleBefore)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to list backlog users")
		return
	}

	for _, userID := range users {
		if _, err := p.Enqueue(ctx, userID); err != nil {
			p.log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to enqueue backlog")
		}
	}
}

// Enqueue fetches a user's stale backlog and submits it to the pool in
// chunks. Returns the number of records queued.
func (p *Processor) Enqueue(ctx context.Context, userID uuid.UUID) (int, error) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return 0, nil
	}
	p.mu.Unlock()

	staleBefore := time.Now().Add(-p.config.Staleness)
	emails, err := p.repo.ListUnprocessed(ctx, userID, staleBefore, p.config.FetchLimit)
	if err != nil {
		return 0, err
	}
	if len(emails) == 0 {
		return 0, nil
	}

	uc, err := p.pipeline.LoadUserContext(ctx, userID)
	if err != nil {
		return 0, err
	}

	queued := 0
	for start := 0; start < len(emails); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(emails) {
			end = len(emails)
		}
		p.pool.Submit(&chunk{
			userID:  userID,
			uc:      uc,
			emails:  emails[start:end],
			started: time.Now(),
		})
		queued += end - start
	}

	p.log.Debug().
		Str("user_id", userID.String()).
		Int("queued", queued).
		Msg("backlog enqueued")
	return queued, nil
}

// processChunk triages every record in a chunk and writes the batch back.
// Records with a fresh cached result keep it instead of being re-scored.
func (p *Processor) processChunk(ctx context.Context, c *chunk) error {
	processed := 0
	for _, email := range c.emails {
		if p.freshFromCache(ctx, email) {
			atomic.AddInt64(&p.metrics.EmailsSkipped, 1)
			continue
		}

		result := p.pipeline.Run(c.uc, email)
		processed++

		if p.cache != nil {
			if err := p.cache.Set(ctx, email.UserID, email.ID, result); err != nil {
				p.log.Debug().Err(err).Str("email_id", email.ID).Msg("result cache write failed")
			}
		}
	}

	if err := p.repo.UpsertBatch(ctx, c.emails); err != nil {
		atomic.AddInt64(&p.metrics.Failures, 1)
		p.log.Error().Err(err).
			Str("user_id", c.userID.String()).
			Int("size", len(c.emails)).
			Msg("chunk upsert failed")
		return err
	}

	atomic.AddInt64(&p.metrics.ChunksProcessed, 1)
	atomic.AddInt64(&p.metrics.EmailsProcessed, int64(processed))
	p.log.Info().
		Str("user_id", c.userID.String()).
		Int("size", len(c.emails)).
		Int("classified", processed).
		Dur("elapsed", time.Since(c.started)).
		Msg("chunk processed")
	return nil
}

// freshFromCache applies a still-valid cached result to the record. The
// processedAt stamp is refreshed so the staleness query stops returning it.
func (p *Processor) freshFromCache(ctx context.Context, email *domain.EmailRecord) bool {
	if p.cache == nil {
		return false
	}
	result, err := p.cache.Get(ctx, email.UserID, email.ID)
	if err != nil || result == nil {
		return false
	}

	email.Category = result.Category
	email.Priority = result.Priority
	email.Confidence = result.Confidence
	email.IsNewsletter = result.IsNewsletter
	email.IsNonHuman = result.IsNonHuman
	now := time.Now()
	email.ProcessedAt = &now
	return true
}

// Metrics returns a snapshot of the processor counters.
func (p *Processor) Metrics() ProcessorMetrics {
	return ProcessorMetrics{
		ChunksProcessed: atomic.LoadInt64(&p.metrics.ChunksProcessed),
		EmailsProcessed: atomic.LoadInt64(&p.metrics.EmailsProcessed),
		EmailsSkipped:   atomic.LoadInt64(&p.metrics.EmailsSkipped),
		Failures:        atomic.LoadInt64(&p.metrics.Failures),
	}
}
