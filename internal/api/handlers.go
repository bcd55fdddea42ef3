package api

import (
	"errors"
	"strconv"

	"github.com/draftpress/draftpress/internal/config"
	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/middleware"
	"github.com/draftpress/draftpress/internal/models"
	"github.com/draftpress/draftpress/internal/pipeline"
	"github.com/draftpress/draftpress/internal/scheduler"
	"github.com/draftpress/draftpress/internal/store"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handlers struct {
	config    *config.Config
	store     *store.Store
	generator *pipeline.Service
	lifecycle *pipeline.Lifecycle
	scheduler *scheduler.Handle
	validator *middleware.Validator
}

func NewHandlers(cfg *config.Config, st *store.Store, gen *pipeline.Service, lc *pipeline.Lifecycle, sched *scheduler.Handle) *Handlers {
	return &Handlers{
		config:    cfg,
		store:     st,
		generator: gen,
		lifecycle: lc,
		scheduler: sched,
		validator: middleware.NewValidator(),
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": "1.0.0",
	})
}

func pagination(c *fiber.Ctx) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.Query("page_size", "20"))
	switch {
	case pageSize > 100:
		pageSize = 100
	case pageSize <= 0:
		pageSize = 20
	}
	return page, pageSize
}

func objectID(c *fiber.Ctx, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(param))
	if err != nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// mapError translates domain errors into HTTP responses.
func mapError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, pipeline.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
	case errors.Is(err, pipeline.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	logger.Get().Error().Err(err).Str("op", op).Msg("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

// --- Posts ---

// ListPosts handles GET /api/v1/posts
func (h *Handlers) ListPosts(c *fiber.Ctx) error {
	page, pageSize := pagination(c)
	status := c.Query("status", models.PostPublished)

	posts, err := h.store.Posts.List(c.Context(), status, page, pageSize)
	if err != nil {
		return mapError(c, err, "list posts")
	}
	return c.JSON(fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     len(posts),
		"items":     posts,
	})
}

// GetPost handles GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	post, err := h.store.Posts.GetByID(c.Context(), id)
	if err != nil {
		return mapError(c, err, "get post")
	}
	return c.JSON(post)
}

type postRequest struct {
	Title        string   `json:"title" validate:"required,min=3"`
	Content      string   `json:"content" validate:"required,min=10"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	CategoryID   string   `json:"category_id"`
	Status       string   `json:"status" validate:"omitempty,oneof=draft published"`
	ScheduleDate string   `json:"schedule_date"`
}

// CreatePost handles POST /api/v1/admin/posts
func (h *Handlers) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": middleware.Fields(err),
		})
	}

	author, err := h.store.Users.FindOrCreate(c.Context(), h.config.AdminUsername, h.config.AdminEmail, models.RoleAdmin)
	if err != nil {
		return mapError(c, err, "resolve author")
	}

	status := req.Status
	if status == "" {
		status = models.PostDraft
	}
	post := &models.Post{
		Title:        req.Title,
		Content:      req.Content,
		Summary:      req.Summary,
		AuthorID:     author.ID,
		Tags:         req.Tags,
		Status:       status,
		ScheduleDate: req.ScheduleDate,
	}
	if req.CategoryID != "" {
		catID, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category_id"})
		}
		post.CategoryID = catID
	}

	if err := h.store.Posts.Insert(c.Context(), post); err != nil {
		return mapError(c, err, "create post")
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/v1/admin/posts/:id
func (h *Handlers) UpdatePost(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": middleware.Fields(err),
		})
	}

	set := bson.M{
		"title":   req.Title,
		"content": req.Content,
		"summary": req.Summary,
		"tags":    req.Tags,
	}
	if req.Status != "" {
		set["status"] = req.Status
	}
	if req.ScheduleDate != "" {
		set["schedule_date"] = req.ScheduleDate
	}

	if err := h.store.Posts.Update(c.Context(), id, set); err != nil {
		return mapError(c, err, "update post")
	}
	post, err := h.store.Posts.GetByID(c.Context(), id)
	if err != nil {
		return mapError(c, err, "update post")
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/v1/admin/posts/:id
func (h *Handlers) DeletePost(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.Posts.Delete(c.Context(), id); err != nil {
		return mapError(c, err, "delete post")
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

type reactionRequest struct {
	Username string `json:"username" validate:"required"`
	Emoji    string `json:"emoji" validate:"required"`
}

// ReactToPost handles POST /api/v1/posts/:id/reactions
func (h *Handlers) ReactToPost(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}

	var req reactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": middleware.Fields(err),
		})
	}

	user, err := h.store.Users.FindOrCreate(c.Context(), req.Username, "", models.RoleAuthor)
	if err != nil {
		return mapError(c, err, "resolve user")
	}
	if err := h.store.Posts.React(c.Context(), id, user.ID, req.Emoji); err != nil {
		return mapError(c, err, "react")
	}
	return c.JSON(fiber.Map{"status": "reacted"})
}

// --- Categories ---

// ListCategories handles GET /api/v1/categories
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	cats, err := h.store.Categories.List(c.Context())
	if err != nil {
		return mapError(c, err, "list categories")
	}
	return c.JSON(fiber.Map{"items": cats})
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Slug string `json:"slug" validate:"required,min=2"`
}

// CreateCategory handles POST /api/v1/admin/categories
func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": middleware.Fields(err),
		})
	}

	cat := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := h.store.Categories.Insert(c.Context(), cat); err != nil {
		return mapError(c, err, "create category")
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// --- Comments ---

// ListComments handles GET /api/v1/posts/:id/comments
func (h *Handlers) ListComments(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.store.Comments.ListByPost(c.Context(), id)
	if err != nil {
		return mapError(c, err, "list comments")
	}
	return c.JSON(fiber.Map{"items": comments})
}

type commentRequest struct {
	AuthorName string `json:"author_name" validate:"required,min=2"`
	Body       string `json:"body" validate:"required,min=2"`
}

// CreateComment handles POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": middleware.Fields(err),
		})
	}

	// Make sure the post exists before attaching a comment.
	if _, err := h.store.Posts.GetByID(c.Context(), id); err != nil {
		return mapError(c, err, "create comment")
	}

	cm := &models.Comment{PostID: id, AuthorName: req.AuthorName, Body: req.Body}
	if err := h.store.Comments.Insert(c.Context(), cm); err != nil {
		return mapError(c, err, "create comment")
	}
	return c.Status(fiber.StatusCreated).JSON(cm)
}

// --- Suggestions (admin) ---

type generateRequest struct {
	Count int `json:"count" validate:"omitempty,min=1,max=10"`
}

// GenerateSuggestions handles POST /api/v1/admin/suggestions/generate
func (h *Handlers) GenerateSuggestions(c *fiber.Ctx) error {
	var req generateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := h.validator.Validate(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "validation failed",
				"fields": middleware.Fields(err),
			})
		}
	}

	produced, err := h.generator.GenerateBatch(c.Context(), req.Count)
	if err != nil {
		return mapError(c, err, "generate suggestions")
	}
	return c.JSON(fiber.Map{
		"status":   "done",
		"produced": produced,
	})
}

// ListSuggestions handles GET /api/v1/admin/suggestions
func (h *Handlers) ListSuggestions(c *fiber.Ctx) error {
	page, pageSize := pagination(c)
	status := c.Query("status", models.SuggestionPending)

	items, err := h.store.Suggestions.ListByStatus(c.Context(), status, page, pageSize)
	if err != nil {
		return mapError(c, err, "list suggestions")
	}
	return c.JSON(fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     len(items),
		"items":     items,
	})
}

type approveRequest struct {
	Publish bool   `json:"publish"`
	Notes   string `json:"notes"`
}

// ApproveSuggestion handles POST /api/v1/admin/suggestions/:id/approve
func (h *Handlers) ApproveSuggestion(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}

	var req approveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	sg, err := h.lifecycle.Approve(c.Context(), h.lifecycle.SystemPrincipal(), id, req.Publish, req.Notes)
	if err != nil {
		return mapError(c, err, "approve suggestion")
	}
	return c.JSON(sg)
}

// PublishSuggestion handles POST /api/v1/admin/suggestions/:id/publish
func (h *Handlers) PublishSuggestion(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	sg, err := h.lifecycle.Publish(c.Context(), h.lifecycle.SystemPrincipal(), id)
	if err != nil {
		return mapError(c, err, "publish suggestion")
	}
	return c.JSON(sg)
}

type rejectRequest struct {
	Notes string `json:"notes"`
}

// RejectSuggestion handles POST /api/v1/admin/suggestions/:id/reject
func (h *Handlers) RejectSuggestion(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}

	var req rejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	if err := h.lifecycle.Reject(c.Context(), h.lifecycle.SystemPrincipal(), id, req.Notes); err != nil {
		return mapError(c, err, "reject suggestion")
	}
	return c.JSON(fiber.Map{"status": "rejected"})
}

// DeleteSuggestion handles DELETE /api/v1/admin/suggestions/:id
func (h *Handlers) DeleteSuggestion(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.lifecycle.Delete(c.Context(), h.lifecycle.SystemPrincipal(), id); err != nil {
		return mapError(c, err, "delete suggestion")
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// --- Scheduler (admin) ---

// StartScheduler handles POST /api/v1/admin/scheduler/start
func (h *Handlers) StartScheduler(c *fiber.Ctx) error {
	h.scheduler.Start()
	return c.JSON(fiber.Map{"status": "started"})
}

// StopScheduler handles POST /api/v1/admin/scheduler/stop
func (h *Handlers) StopScheduler(c *fiber.Ctx) error {
	h.scheduler.Stop()
	return c.JSON(fiber.Map{"status": "stopped"})
}

// SchedulerStatus handles GET /api/v1/admin/scheduler
func (h *Handlers) SchedulerStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"running": h.scheduler.Running()})
}
