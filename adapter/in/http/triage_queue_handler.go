package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"triage_server/core/domain"
	"triage_server/core/service/inbox"
	"triage_server/core/service/triage"
	"triage_server/pkg/apperr"
	"triage_server/pkg/response"
)

// QueueHandler serves the reply-queue views.
type QueueHandler struct {
	views *inbox.Service
}

// NewQueueHandler creates a queue handler.
func NewQueueHandler(views *inbox.Service) *QueueHandler {
	return &QueueHandler{views: views}
}

// Register registers queue routes.
func (h *QueueHandler) Register(router fiber.Router) {
	queue := router.Group("/queue")

	queue.Get("/", h.Queue)
	queue.Get("/missed", h.Missed)
	queue.Get("/today", h.Today)
	queue.Get("/low", h.LowValue)

	router.Get("/emails/:id", h.Email)
}

// QueueItem decorates a stored record with its color hint.
type QueueItem struct {
	Email         *domain.EmailRecord `json:"email"`
	PriorityColor string              `json:"priority_color"`
}

func queueItems(emails []*domain.EmailRecord) []QueueItem {
	items := make([]QueueItem, len(emails))
	for i, e := range emails {
		items[i] = QueueItem{Email: e, PriorityColor: triage.PriorityColor(e.Priority)}
	}
	return items
}

// Email returns one stored record with its color hint.
// GET /api/v1/emails/:id
func (h *QueueHandler) Email(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	id := c.Params("id")
	if id == "" {
		return apperr.BadRequest("id is required")
	}

	email, err := h.views.Get(c.Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrEmailNotFound) {
			return apperr.NotFound("email")
		}
		return apperr.DatabaseError("get email", err)
	}
	return response.OK(c, QueueItem{Email: email, PriorityColor: triage.PriorityColor(email.Priority)})
}

// Queue returns the reply queue, optionally filtered to one exact priority.
// GET /api/v1/queue?priority=4
func (h *QueueHandler) Queue(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	var exact *int
	if p := c.QueryInt("priority", 0); p >= 1 && p <= 5 {
		exact = &p
	}

	emails, err := h.views.Queue(c.Context(), userID, exact)
	if err != nil {
		return apperr.DatabaseError("list reply queue", err)
	}
	return response.OKWithMeta(c, queueItems(emails), &response.Meta{Total: len(emails)})
}

// Missed returns unread mail from before today with priority >= 3.
// GET /api/v1/queue/missed
func (h *QueueHandler) Missed(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	emails, err := h.views.Missed(c.Context(), userID)
	if err != nil {
		return apperr.DatabaseError("list missed emails", err)
	}
	return response.OKWithMeta(c, queueItems(emails), &response.Meta{Total: len(emails)})
}

// Today returns mail received today.
// GET /api/v1/queue/today
func (h *QueueHandler) Today(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	emails, err := h.views.Today(c.Context(), userID)
	if err != nil {
		return apperr.DatabaseError("list today's emails", err)
	}
	return response.OKWithMeta(c, queueItems(emails), &response.Meta{Total: len(emails)})
}

// LowValue returns the non-important bucket. This bucket is the only
// unbounded one, so it paginates.
// GET /api/v1/queue/low?page=1&page_size=50
func (h *QueueHandler) LowValue(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("missing or invalid user id")
	}

	p := response.GetPagination(c, 50, 200)
	emails, total, err := h.views.LowValue(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return apperr.DatabaseError("list low-value emails", err)
	}

	return response.OKWithMeta(c, queueItems(emails), &response.Meta{
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  p.Offset+len(emails) < total,
	})
}
