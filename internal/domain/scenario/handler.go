package scenario

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/emstrain/emstrain/pkg/pagination"
)

type Handler struct {
	mgr      *Manager
	attempts AttemptStore
}

func NewHandler(mgr *Manager, attempts AttemptStore) *Handler {
	return &Handler{mgr: mgr, attempts: attempts}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/encounters", h.Start)
	api.GET("/encounters/:learnerID", h.Get)
	api.DELETE("/encounters/:learnerID", h.Abandon)
	api.POST("/encounters/:learnerID/questions", h.Ask)
	api.POST("/encounters/:learnerID/interventions", h.Intervene)
	api.POST("/encounters/:learnerID/red-flags/:flagID", h.IdentifyRedFlag)
	api.POST("/encounters/:learnerID/notes", h.AddNote)
	api.POST("/encounters/:learnerID/complete", h.Complete)

	api.GET("/attempts", h.ListAttempts)
	api.GET("/attempts/:id", h.GetAttempt)
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

	enc, err := h.mgr.Start(c.Request().Context(), req.LearnerID, req.ScenarioID)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusCreated, enc)
}

func (h *Handler) Get(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	enc, err := h.mgr.Get(learnerID)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusOK, enc)
}

func (h *Handler) Abandon(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	if err := h.mgr.Abandon(c.Request().Context(), learnerID); err != nil {
		return businessError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *Handler) Ask(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	answer, err := h.mgr.Ask(c.Request().Context(), learnerID, req.Question)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

type interveneRequest struct {
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Params         map[string]string `json:"params"`
	StepsCompleted int               `json:"steps_completed"`
}

func (h *Handler) Intervene(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	var req interveneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	iv, err := h.mgr.Intervene(c.Request().Context(), learnerID, req.Name, req.Category, req.Params, req.StepsCompleted)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusCreated, iv)
}

func (h *Handler) IdentifyRedFlag(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	rf, err := h.mgr.IdentifyRedFlag(learnerID, c.Param("flagID"))
	if err != nil {
		return businessError(err)
	}
	if rf == nil {
		// Unknown flags are a silent no-op; report the empty outcome.
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, rf)
}

type noteRequest struct {
	Text string `json:"text"`
}

func (h *Handler) AddNote(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	if err := h.mgr.AddNote(learnerID, req.Text); err != nil {
		return businessError(err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) Complete(c echo.Context) error {
	learnerID, err := uuid.Parse(c.Param("learnerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid learner id")
	}
	attempt, err := h.mgr.Complete(c.Request().Context(), learnerID)
	if err != nil {
		return businessError(err)
	}
	return c.JSON(http.StatusOK, attempt)
}

func (h *Handler) ListAttempts(c echo.Context) error {
	learnerID, err := uuid.Parse(c.QueryParam("learner_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "learner_id query parameter is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.attempts.ListByLearner(c.Request().Context(), learnerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetAttempt(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.attempts.GetByID(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "attempt not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

// businessError maps domain sentinel errors onto HTTP status codes.
func businessError(err error) error {
	switch {
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrNoActiveEncounter), errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEncounterActive), errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrOracleUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
