package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"triage_server/core/domain"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Settings Adapter (PostgreSQL)
// =============================================================================

// SettingsAdapter implements domain.SettingsRepository over the key/value
// triage_settings table. Values are JSONB documents keyed by setting name.
type SettingsAdapter struct {
	db *sqlx.DB
}

// NewSettingsAdapter creates a new SettingsAdapter.
func NewSettingsAdapter(db *sqlx.DB) *SettingsAdapter {
	return &SettingsAdapter{db: db}
}

const settingUpsertQuery = `
	INSERT INTO triage_settings (user_id, key, value, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	ON CONFLICT (user_id, key) DO UPDATE SET
		value = EXCLUDED.value,
		updated_at = NOW()`

// getSetting loads one setting document into out. A missing row leaves out
// untouched and returns false.
func (a *SettingsAdapter) getSetting(ctx context.Context, userID uuid.UUID, key string, out interface{}) (bool, error) {
	const query = `SELECT value FROM triage_settings WHERE user_id = $1 AND key = $2`

	var raw []byte
	if err := a.db.GetContext(ctx, &raw, query, userID, key); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

func (a *SettingsAdapter) saveSetting(ctx context.Context, userID uuid.UUID, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = a.db.ExecContext(ctx, settingUpsertQuery, userID, key, raw)
	return err
}

// GetDNDRules returns the user's DND rules, empty when none are stored.
func (a *SettingsAdapter) GetDNDRules(ctx context.Context, userID uuid.UUID) ([]domain.DNDRule, error) {
	var rules []domain.DNDRule
	if _, err := a.getSetting(ctx, userID, domain.SettingDNDRules, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// SaveDNDRules replaces the user's DND rules.
func (a *SettingsAdapter) SaveDNDRules(ctx context.Context, userID uuid.UUID, rules []domain.DNDRule) error {
	if rules == nil {
		rules = []domain.DNDRule{}
	}
	return a.saveSetting(ctx, userID, domain.SettingDNDRules, rules)
}

// GetCategoryOverrides returns the user's category overrides, empty when none
// are stored.
func (a *SettingsAdapter) GetCategoryOverrides(ctx context.Context, userID uuid.UUID) ([]domain.CategoryOverride, error) {
	var overrides []domain.CategoryOverride
	if _, err := a.getSetting(ctx, userID, domain.SettingCategoryOverrides, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

// SaveCategoryOverrides replaces the user's category overrides.
func (a *SettingsAdapter) SaveCategoryOverrides(ctx context.Context, userID uuid.UUID, overrides []domain.CategoryOverride) error {
	if overrides == nil {
		overrides = []domain.CategoryOverride{}
	}
	return a.saveSetting(ctx, userID, domain.SettingCategoryOverrides, overrides)
}
