// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"triage_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// =============================================================================
// Email Adapter (PostgreSQL)
// =============================================================================

// EmailAdapter implements domain.EmailRepository using PostgreSQL.
type EmailAdapter struct {
	db *sqlx.DB
}

// NewEmailAdapter creates a new EmailAdapter.
func NewEmailAdapter(db *sqlx.DB) *EmailAdapter {
	return &EmailAdapter{db: db}
}

// =============================================================================
// Database Row Mapping
// =============================================================================

const emailSelectColumns = `
	e.id, e.user_id, e.from_email, e.subject, e.body, e.email_date, e.unread,
	e.category, e.priority, e.confidence, e.is_newsletter, e.is_non_human,
	e.is_dnd, e.tab, e.info_links, e.info_dates, e.info_money, e.info_tasks,
	e.processed_at`

// emailRow represents the database row for classified emails.
type emailRow struct {
	ID        string       `db:"id"`
	UserID    uuid.UUID    `db:"user_id"`
	FromEmail string       `db:"from_email"`
	Subject   string       `db:"subject"`
	Body      string       `db:"body"`
	EmailDate sql.NullTime `db:"email_date"`
	Unread    bool         `db:"unread"`

	// Classification outcome, NULL until the worker has run.
	Category     sql.NullString  `db:"category"`
	Priority     sql.NullInt64   `db:"priority"`
	Confidence   sql.NullFloat64 `db:"confidence"`
	IsNewsletter bool            `db:"is_newsletter"`
	IsNonHuman   bool            `db:"is_non_human"`
	IsDND        bool            `db:"is_dnd"`
	Tab          sql.NullString  `db:"tab"`
	InfoLinks    pq.StringArray  `db:"info_links"`
	InfoDates    pq.StringArray  `db:"info_dates"`
	InfoMoney    pq.StringArray  `db:"info_money"`
	InfoTasks    pq.StringArray  `db:"info_tasks"`
	ProcessedAt  sql.NullTime    `db:"processed_at"`
}

func (r *emailRow) toEntity() (*domain.EmailRecord, error) {
	email := &domain.EmailRecord{
		ID:           r.ID,
		UserID:       r.UserID,
		From:         r.FromEmail,
		Subject:      r.Subject,
		Body:         r.Body,
		Unread:       r.Unread,
		IsNewsletter: r.IsNewsletter,
		IsNonHuman:   r.IsNonHuman,
		IsDND:        r.IsDND,
	}

	if r.EmailDate.Valid {
		email.Date = r.EmailDate.Time
	}
	if r.Category.Valid {
		email.Category = domain.Category(r.Category.String)
	}
	if r.Priority.Valid {
		email.Priority = int(r.Priority.Int64)
	}
	if r.Confidence.Valid {
		email.Confidence = r.Confidence.Float64
	}
	if r.Tab.Valid {
		email.Tab = domain.InboxTab(r.Tab.String)
	}
	info := &domain.ImportantInfo{
		Links: r.InfoLinks,
		Dates: r.InfoDates,
		Money: r.InfoMoney,
		Tasks: r.InfoTasks,
	}
	if !info.Empty() {
		email.ImportantInfo = info
	}
	if r.ProcessedAt.Valid {
		email.ProcessedAt = &r.ProcessedAt.Time
	}

	return email, nil
}

// upsertArgs flattens a record into the insert argument list.
func upsertArgs(email *domain.EmailRecord) []interface{} {
	info := email.ImportantInfo
	if info == nil {
		info = &domain.ImportantInfo{}
	}

	return []interface{}{
		email.ID, email.UserID, email.From, email.Subject, email.Body,
		nullTime(email.Date), email.Unread,
		nullStr(string(email.Category)), nullInt(email.Priority), email.Confidence,
		email.IsNewsletter, email.IsNonHuman, email.IsDND,
		nullStr(string(email.Tab)),
		pq.Array(info.Links), pq.Array(info.Dates), pq.Array(info.Money), pq.Array(info.Tasks),
		email.ProcessedAt,
	}
}

// =============================================================================
// CRUD Operations
// =============================================================================

const emailUpsertQuery = `
	INSERT INTO emails (
		id, user_id, from_email, subject, body, email_date, unread,
		category, priority, confidence, is_newsletter, is_non_human,
		is_dnd, tab, info_links, info_dates, info_money, info_tasks, processed_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
	)
	ON CONFLICT (user_id, id) DO UPDATE SET
		from_email = EXCLUDED.from_email,
		subject = EXCLUDED.subject,
		body = EXCLUDED.body,
		email_date = EXCLUDED.email_date,
		unread = EXCLUDED.unread,
		category = EXCLUDED.category,
		priority = EXCLUDED.priority,
		confidence = EXCLUDED.confidence,
		is_newsletter = EXCLUDED.is_newsletter,
		is_non_human = EXCLUDED.is_non_human,
		is_dnd = EXCLUDED.is_dnd,
		tab = EXCLUDED.tab,
		info_links = EXCLUDED.info_links,
		info_dates = EXCLUDED.info_dates,
		info_money = EXCLUDED.info_money,
		info_tasks = EXCLUDED.info_tasks,
		processed_at = EXCLUDED.processed_at,
		updated_at = NOW()`

// GetByID retrieves one email scoped to its owner.
func (a *EmailAdapter) GetByID(ctx context.Context, userID uuid.UUID, id string) (*domain.EmailRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM emails e WHERE e.user_id = $1 AND e.id = $2`, emailSelectColumns)

	var row emailRow
	if err := a.db.GetContext(ctx, &row, query, userID, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEmailNotFound
		}
		return nil, err
	}
	return row.toEntity()
}

// List retrieves emails matching the filter, priority-descending.
func (a *EmailAdapter) List(ctx context.Context, filter *domain.EmailFilter) ([]*domain.EmailRecord, error) {
	if filter == nil {
		return nil, fmt.Errorf("nil email filter")
	}

	where, args := buildEmailWhere(filter)

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	query := fmt.Sprintf(`
		SELECT %s FROM emails e
		WHERE %s
		ORDER BY e.priority DESC NULLS LAST, e.processed_at DESC NULLS LAST
		LIMIT %d OFFSET %d`,
		emailSelectColumns, where, limit, filter.Offset)

	var rows []emailRow
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	emails := make([]*domain.EmailRecord, 0, len(rows))
	for i := range rows {
		email, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, nil
}

// Count returns the number of emails matching the filter, ignoring the
// filter's Limit and Offset.
func (a *EmailAdapter) Count(ctx context.Context, filter *domain.EmailFilter) (int, error) {
	if filter == nil {
		return 0, fmt.Errorf("nil email filter")
	}

	where, args := buildEmailWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM emails e WHERE %s`, where)

	var count int
	if err := a.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// ListUnprocessed retrieves records that were never classified or whose
// classification is older than staleBefore, oldest first.
func (a *EmailAdapter) ListUnprocessed(ctx context.Context, userID uuid.UUID, staleBefore time.Time, limit int) ([]*domain.EmailRecord, error) {
	if limit <= 0 {
		limit = 200
	}

	query := fmt.Sprintf(`
		SELECT %s FROM emails e
		WHERE e.user_id = $1
		  AND (e.processed_at IS NULL OR e.processed_at < $2)
		ORDER BY e.processed_at ASC NULLS FIRST, e.email_date ASC
		LIMIT $3`, emailSelectColumns)

	var rows []emailRow
	if err := a.db.SelectContext(ctx, &rows, query, userID, staleBefore, limit); err != nil {
		return nil, err
	}

	emails := make([]*domain.EmailRecord, 0, len(rows))
	for i := range rows {
		email, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, nil
}

// ListBacklogUsers returns the distinct users that currently have
// unclassified or stale records.
func (a *EmailAdapter) ListBacklogUsers(ctx context.Context, staleBefore time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT e.user_id FROM emails e
		WHERE e.processed_at IS NULL OR e.processed_at < $1`

	var users []uuid.UUID
	if err := a.db.SelectContext(ctx, &users, query, staleBefore); err != nil {
		return nil, err
	}
	return users, nil
}

// Upsert inserts or refreshes one record keyed on (user_id, id).
func (a *EmailAdapter) Upsert(ctx context.Context, email *domain.EmailRecord) error {
	_, err := a.db.ExecContext(ctx, emailUpsertQuery, upsertArgs(email)...)
	return err
}

// UpsertBatch writes a batch of records in one transaction.
func (a *EmailAdapter) UpsertBatch(ctx context.Context, emails []*domain.EmailRecord) error {
	if len(emails) == 0 {
		return nil
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, email := range emails {
		if _, err := tx.ExecContext(ctx, emailUpsertQuery, upsertArgs(email)...); err != nil {
			return fmt.Errorf("upsert %s: %w", email.ID, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// Filter Building
// =============================================================================

func buildEmailWhere(filter *domain.EmailFilter) (string, []interface{}) {
	conditions := []string{"e.user_id = $1"}
	args := []interface{}{filter.UserID}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Tab != nil {
		add("e.tab = $%d", string(*filter.Tab))
	}
	if filter.Category != nil {
		add("e.category = $%d", string(*filter.Category))
	}
	if filter.Priority != nil {
		add("e.priority = $%d", *filter.Priority)
	}
	if filter.MinPriority != nil {
		add("e.priority >= $%d", *filter.MinPriority)
	}
	if filter.MaxPriority != nil {
		add("e.priority <= $%d", *filter.MaxPriority)
	}
	if filter.Unread != nil {
		add("e.unread = $%d", *filter.Unread)
	}
	if filter.DateFrom != nil {
		add("e.email_date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("e.email_date < $%d", *filter.DateTo)
	}

	if filter.ExcludeLowValue {
		conditions = append(conditions,
			fmt.Sprintf("(e.category IS NULL OR e.category <> '%s')", domain.CategoryOther),
			"e.is_non_human = FALSE")
	}
	if filter.IncludeLowValue {
		conditions = append(conditions, fmt.Sprintf(
			"(e.priority <= 3 OR e.category = '%s' OR e.is_non_human = TRUE)",
			domain.CategoryOther))
	}

	return strings.Join(conditions, " AND "), args
}

// =============================================================================
// NULL Helpers
// =============================================================================

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(i), Valid: i != 0}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
