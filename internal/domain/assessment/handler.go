package assessment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/emstrain/emstrain/pkg/pagination"
)

type Handler struct {
	mgr     *Manager
	results ResultStore
}

func NewHandler(mgr *Manager, results ResultStore) *Handler {
	return &Handler{mgr: mgr, results: results}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/assessments", h.Start)
	api.GET("/assessments/:learnerID", h.Get)
	api.GET("/assessments/:learnerID/criteria", h.AvailableCriteria)
	api.POST("/assessments/:learnerID/actions", h.Perform)
	api.POST("/assessments/:learnerID/complete", h.Complete)
	api.DELETE("/assessments/:learnerID", h.Abandon)

	api.GET("/assessment-results", h.ListResults)
	api.GET("/assessment-results/:id", h.GetResult)
}

type startRequest struct {
	LearnerID  uuid.UUID `json:"learner_id"`
	ScenarioID uuid.UUID `json:"scenario_id"`
}

func (h *Handler) Start(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.LearnerID == uuid.Nil || req.ScenarioID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "learner_id and scenario_id are required")
	}

	a, err := h.mgr.Start(c.Request().Context(), req.LearnerID, req.ScenarioID)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	a, err := h.mgr.Get(learnerID)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) AvailableCriteria(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	items, err := h.mgr.AvailableCriteria(learnerID)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type performRequest struct {
	CriterionID string   `json:"criterion_id"`
	FindingIDs  []string `json:"finding_ids"`
	Notes       string   `json:"notes"`
}

func (h *Handler) Perform(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	var req performRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CriterionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "criterion_id is required")
	}

	a, err := h.mgr.Perform(learnerID, req.CriterionID, req.FindingIDs, req.Notes)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Complete(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	result, err := h.mgr.Complete(c.Request().Context(), learnerID)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Abandon(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	if err := h.mgr.Abandon(learnerID); err != nil {
		return businessError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListResults(c echo.Context) error {
	learnerID, err := uuid.Parse(c.QueryParam("learner_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "learner_id query parameter is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.results.ListByLearner(c.Request().Context(), learnerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.results.GetByID(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "result not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

// businessError maps domain sentinel errors onto HTTP status codes.
func businessError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoActiveAssessment):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCriteria):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrAssessmentActive):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
