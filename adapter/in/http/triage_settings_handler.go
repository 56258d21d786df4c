package http

import (
	"github.com/gofiber/fiber/v2"

	"triage_server/core/domain"
	"triage_server/pkg/apperr"
	"triage_server/pkg/response"
)

// SettingsHandler serves the per-user DND rules and category overrides.
type SettingsHandler struct {
	settings domain.SettingsRepository
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(settings domain.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Register registers settings routes.
func (h *SettingsHandler) Register(router fiber.Router) {
	settings := router.Group("/settings")

	settings.Get("/dnd-rules", h.GetDNDRules)
	settings.Put("/dnd-rules", h.UpdateDNDRules)
	settings.Get("/categories", h.GetCategories)
	settings.Put("/categories", h.UpdateCategories)
}

// GetDNDRules returns the caller's stored DND rules.
// GET /api/v1/settings/dnd-rules
func (h *SettingsHandler) GetDNDRules(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	rules, err := h.settings.GetDNDRules(c.Context(), userID)
	if err != nil {
		return apperr.DatabaseError("load dnd rules", err)
	}
	if rules == nil {
		rules = []domain.DNDRule{}
	}
	return response.OK(c, rules)
}

// UpdateDNDRules replaces the caller's DND rules.
// PUT /api/v1/settings/dnd-rules
func (h *SettingsHandler) UpdateDNDRules(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	var rules []domain.DNDRule
	if err := c.BodyParser(&rules); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	for i := range rules {
		if err := validateDNDRule(&rules[i]); err != nil {
			return err
		}
	}

	if err := h.settings.SaveDNDRules(c.Context(), userID, rules); err != nil {
		return apperr.DatabaseError("save dnd rules", err)
	}
	return response.OK(c, rules)
}

func validateDNDRule(rule *domain.DNDRule) error {
	if (rule.TimeStart == nil) != (rule.TimeEnd == nil) {
		return apperr.ValidationFailed("time window needs both start and end hours")
	}
	if rule.TimeStart != nil {
		if *rule.TimeStart < 0 || *rule.TimeStart > 23 || *rule.TimeEnd < 0 || *rule.TimeEnd > 23 {
			return apperr.ValidationFailed("window hours must be in 0..23")
		}
	}
	for _, ex := range rule.Exception {
		switch ex.Type {
		case domain.ExceptionKeyword, domain.ExceptionUrgent, domain.ExceptionDeadline:
		default:
			return apperr.InvalidInput("exceptions", "unknown exception type")
		}
	}
	return nil
}

// CategorySettings pairs the effective definitions with the raw overrides.
type CategorySettings struct {
	Definitions []domain.CategoryDefinition `json:"definitions"`
	Overrides   []domain.CategoryOverride   `json:"overrides"`
}

// GetCategories returns the category table with the caller's overrides
// applied, plus the overrides themselves.
// GET /api/v1/settings/categories
func (h *SettingsHandler) GetCategories(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	overrides, err := h.settings.GetCategoryOverrides(c.Context(), userID)
	if err != nil {
		return apperr.DatabaseError("load category overrides", err)
	}
	if overrides == nil {
		overrides = []domain.CategoryOverride{}
	}

	registry := domain.DefaultRegistry().WithOverrides(overrides)
	return response.OK(c, CategorySettings{
		Definitions: registry.Definitions(),
		Overrides:   overrides,
	})
}

// UpdateCategories replaces the caller's category overrides.
// PUT /api/v1/settings/categories
func (h *SettingsHandler) UpdateCategories(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	var overrides []domain.CategoryOverride
	if err := c.BodyParser(&overrides); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	for _, o := range overrides {
		if !o.Category.Valid() || o.Category == domain.CategoryOther {
			return apperr.InvalidInput("category", "unknown category "+string(o.Category))
		}
		if o.BasePriority != nil && (*o.BasePriority < 1 || *o.BasePriority > 5) {
			return apperr.InvalidInput("base_priority", "must be in 1..5")
		}
	}

	if err := h.settings.SaveCategoryOverrides(c.Context(), userID, overrides); err != nil {
		return apperr.DatabaseError("save category overrides", err)
	}
	return response.OK(c, overrides)
}
