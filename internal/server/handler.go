package server

import (
	"context"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/form"
	"github.com/hammamikhairi/recipedesk/internal/logger"
	"github.com/hammamikhairi/recipedesk/internal/mutation"
	"github.com/hammamikhairi/recipedesk/internal/view"
)

// Records is the read side the handlers need; store.MemoryStore
// satisfies it.
type Records interface {
	view.Source
	Get(id int) (domain.Recipe, error)
}

// Mutator is the write side; mutation.Coordinator satisfies it.
type Mutator interface {
	Create(ctx context.Context, draft domain.Draft) *mutation.Task[domain.Recipe]
	Edit(ctx context.Context, id int, patch domain.Patch) *mutation.Task[domain.Recipe]
	Delete(ctx context.Context, id int) *mutation.Task[domain.Recipe]
}

type (
	RecipeHandler interface {
		List(c *fiber.Ctx) error
		Get(c *fiber.Ctx) error
		Create(c *fiber.Ctx) error
		Update(c *fiber.Ctx) error
		Delete(c *fiber.Ctx) error
	}

	recipeHandler struct {
		records   Records
		mutator   Mutator
		pipeline  *view.Pipeline
		validator *validator.Validate
		log       *logger.Logger
	}
)

func NewRecipeHandler(records Records, mutator Mutator, pipeline *view.Pipeline, validator *validator.Validate, log *logger.Logger) RecipeHandler {
	return &recipeHandler{
		records:   records,
		mutator:   mutator,
		pipeline:  pipeline,
		validator: validator,
		log:       log,
	}
}

// listQuery is the query string of GET /api/recipes.
type listQuery struct {
	Cuisine    string  `query:"cuisine"`
	Difficulty string  `query:"difficulty"`
	MinRating  float64 `query:"minRating"`
	Tags       string  `query:"tags"`
	SortBy     string  `query:"sortBy"`
	Page       int     `query:"page"`
	PageSize   int     `query:"pageSize"`
}

func (h *recipeHandler) List(c *fiber.Ctx) error {
	q := new(listQuery)
	if err := c.QueryParser(q); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedQuery, err)
	}
	sortKey, err := domain.ParseSortKey(q.SortBy)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedQuery, err)
	}
	if math.IsNaN(q.MinRating) || math.IsInf(q.MinRating, 0) {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedQuery, form.ErrNotFinite)
	}

	state := view.State{
		Criteria: domain.Criteria{
			Cuisine:    q.Cuisine,
			Difficulty: q.Difficulty,
			MinRating:  q.MinRating,
			Tags:       q.Tags,
			Sort:       sortKey,
		},
		Page: q.Page,
	}
	res := h.pipeline.RenderSize(h.records, state, q.PageSize)
	return SuccessResponse(c, res, fiber.StatusOK, MessageSuccessList)
}

func (h *recipeHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedID, err)
	}
	rec, err := h.records.Get(id)
	if err != nil {
		return ErrorResponse(c, statusOf(err), MessageFailedGet, err)
	}
	return SuccessResponse(c, rec, fiber.StatusOK, MessageSuccessGet)
}

func (h *recipeHandler) Create(c *fiber.Ctx) error {
	draft := new(domain.Draft)
	if err := c.BodyParser(draft); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedBody, err)
	}
	if draft.Servings == 0 {
		draft.Servings = form.DefaultServings
	}
	if draft.Difficulty == "" {
		draft.Difficulty = form.DefaultDifficulty
	}
	if err := form.ValidateDraft(h.validator, *draft); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedCreate, err)
	}

	rec, err := h.mutator.Create(c.UserContext(), *draft).Wait(c.UserContext())
	if err != nil {
		h.log.Warn("create via api failed: %v", err)
		return ErrorResponse(c, fiber.StatusBadGateway, MessageFailedCreate, err)
	}
	return SuccessResponse(c, rec, fiber.StatusCreated, MessageSuccessCreate)
}

func (h *recipeHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedID, err)
	}
	patch := new(domain.Patch)
	if err := c.BodyParser(patch); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedBody, err)
	}
	if err := form.ValidatePatch(h.validator, *patch); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedUpdate, err)
	}

	rec, err := h.mutator.Edit(c.UserContext(), id, *patch).Wait(c.UserContext())
	if err != nil {
		return ErrorResponse(c, statusOf(err), MessageFailedUpdate, err)
	}
	return SuccessResponse(c, rec, fiber.StatusOK, MessageSuccessUpdate)
}

func (h *recipeHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return ErrorResponse(c, fiber.StatusBadRequest, MessageFailedID, err)
	}
	if _, err := h.mutator.Delete(c.UserContext(), id).Wait(c.UserContext()); err != nil {
		return ErrorResponse(c, statusOf(err), MessageFailedDelete, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// statusOf maps coordinator and store errors to HTTP status codes.
func statusOf(err error) int {
	var div *mutation.DivergenceError
	var ferr *form.Error
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrEmptyPatch), errors.As(err, &ferr):
		return fiber.StatusBadRequest
	case errors.As(err, &div):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
