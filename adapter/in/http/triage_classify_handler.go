package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"triage_server/adapter/out/persistence"
	"triage_server/core/domain"
	"triage_server/core/service/pipeline"
	"triage_server/core/service/triage"
	"triage_server/pkg/apperr"
	"triage_server/pkg/response"
)

// maxBatchSize bounds one classify-batch request.
const maxBatchSize = 500

// ClassifyHandler serves the classification, extraction and DND endpoints.
type ClassifyHandler struct {
	pipeline *pipeline.Pipeline
	repo     domain.EmailRepository
	settings domain.SettingsRepository
	cache    *persistence.ResultCache
}

// NewClassifyHandler creates a classify handler. Repo and cache may be nil
// for a stateless deployment; results are then returned but not stored.
func NewClassifyHandler(pl *pipeline.Pipeline, repo domain.EmailRepository, settings domain.SettingsRepository, cache *persistence.ResultCache) *ClassifyHandler {
	return &ClassifyHandler{
		pipeline: pl,
		repo:     repo,
		settings: settings,
		cache:    cache,
	}
}

// Register registers classification routes.
func (h *ClassifyHandler) Register(router fiber.Router) {
	router.Post("/classify", h.Classify)
	router.Post("/classify/batch", h.ClassifyBatch)
	router.Post("/extract", h.Extract)
	router.Post("/dnd/check", h.CheckDND)
}

// ClassifyRequest is one email to triage.
type ClassifyRequest struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Date    time.Time `json:"date"`
	Unread  bool      `json:"unread"`
	// Store persists the triaged record when true.
	Store bool `json:"store"`
}

func (r *ClassifyRequest) toRecord() *domain.EmailRecord {
	return &domain.EmailRecord{
		ID:      r.ID,
		From:    r.From,
		Subject: r.Subject,
		Body:    r.Body,
		Date:    r.Date,
		Unread:  r.Unread,
	}
}

// ClassifyResponse is the triaged record plus its color hint.
type ClassifyResponse struct {
	Email         *domain.EmailRecord          `json:"email"`
	Result        *domain.ClassificationResult `json:"result"`
	PriorityColor string                       `json:"priority_color"`
}

// Classify triages a single email.
// POST /api/v1/classify
func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	var req ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	email := req.toRecord()
	email.UserID = userID

	result, err := h.pipeline.RunOne(c.Context(), email)
	if err != nil {
		return apperr.Internal("classification failed").WithError(err)
	}

	if req.Store && h.repo != nil {
		if email.ID == "" {
			return apperr.BadRequest("id is required to store a record")
		}
		if err := h.repo.Upsert(c.Context(), email); err != nil {
			return apperr.DatabaseError("store classified email", err)
		}
		if h.cache != nil {
			_ = h.cache.Set(c.Context(), userID, email.ID, result)
		}
	}

	return response.OK(c, ClassifyResponse{
		Email:         email,
		Result:        result,
		PriorityColor: triage.PriorityColor(result.Priority),
	})
}

// ClassifyBatchRequest triages a list of emails in one call.
type ClassifyBatchRequest struct {
	Emails []ClassifyRequest `json:"emails"`
	Store  bool              `json:"store"`
}

// ClassifyBatch triages up to maxBatchSize emails.
// POST /api/v1/classify/batch
func (h *ClassifyHandler) ClassifyBatch(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	var req ClassifyBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if len(req.Emails) == 0 {
		return response.OK(c, []ClassifyResponse{})
	}
	if len(req.Emails) > maxBatchSize {
		return apperr.BadRequest("batch too large")
	}

	uc, err := h.pipeline.LoadUserContext(c.Context(), userID)
	if err != nil {
		return apperr.DatabaseError("load user settings", err)
	}

	out := make([]ClassifyResponse, 0, len(req.Emails))
	records := make([]*domain.EmailRecord, 0, len(req.Emails))
	for i := range req.Emails {
		email := req.Emails[i].toRecord()
		email.UserID = userID
		result := h.pipeline.Run(uc, email)
		records = append(records, email)
		out = append(out, ClassifyResponse{
			Email:         email,
			Result:        result,
			PriorityColor: triage.PriorityColor(result.Priority),
		})
	}

	if req.Store && h.repo != nil {
		if err := h.repo.UpsertBatch(c.Context(), records); err != nil {
			return apperr.DatabaseError("store classified batch", err)
		}
	}

	return response.OKWithMeta(c, out, &response.Meta{Total: len(out)})
}

// Extract pulls structured info out of one email without classifying it.
// POST /api/v1/extract
func (h *ClassifyHandler) Extract(c *fiber.Ctx) error {
	var req ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	return response.OK(c, triage.ExtractImportantInfo(req.toRecord()))
}

// CheckDND evaluates one email against the caller's stored DND rules.
// POST /api/v1/dnd/check
func (h *ClassifyHandler) CheckDND(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	var req ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	var rules []domain.DNDRule
	if h.settings != nil {
		if rules, err = h.settings.GetDNDRules(c.Context(), userID); err != nil {
			return apperr.DatabaseError("load dnd rules", err)
		}
	}

	return response.OK(c, fiber.Map{
		"suppressed": triage.EvaluateDND(req.toRecord(), rules),
	})
}
