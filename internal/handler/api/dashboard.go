package api

import (
	"context"
	"errors"
	"net/http"

	"StockDash/internal/domain/models"
	domrepo "StockDash/internal/domain/repository"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
	xlogger "StockDash/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Error codes returned in AppError.Code.
const (
	codeSessionNotFound    = "ERR_SESSION_NOT_FOUND"
	codeUnknownInstrument  = "ERR_UNKNOWN_INSTRUMENT"
	codeSubmissionInFlight = "ERR_SUBMISSION_IN_FLIGHT"
	codeRateLimited        = "ERR_RATE_LIMITED"
)

// DashboardHandler serves the presentation layer: catalog, sessions and their streams.
type DashboardHandler struct {
	logger   *xlogger.Logger
	catalog  domrepo.Catalog
	sessions *usecase.Manager
	format   Formatter
	upgrader websocket.Upgrader
}

func NewDashboardHandler(
	logger *xlogger.Logger,
	catalog domrepo.Catalog,
	sessions *usecase.Manager,
	format Formatter,
	allowOrigins []string,
) *DashboardHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &DashboardHandler{
		logger:   logger,
		catalog:  catalog,
		sessions: sessions,
		format:   format,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowOrigins),
		},
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/instruments", h.Instruments)
	g.POST("/sessions", h.CreateSession)
	g.GET("/sessions/:id", h.GetSession)
	g.DELETE("/sessions/:id", h.DeleteSession)
	g.PATCH("/sessions/:id/form", h.UpdateForm)
	g.POST("/sessions/:id/submit", h.Submit)
	g.GET("/sessions/:id/stream", h.Stream)
}

func (h *DashboardHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":      "ok",
		"instruments": len(h.catalog.List()),
		"sessions":    h.sessions.Len(),
	})
}

func (h *DashboardHandler) Instruments(c echo.Context) error {
	items := toInstrumentResponses(h.catalog.List())
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=60")
	return xhttp.ListResponse(c, items, int64(len(items)))
}

func (h *DashboardHandler) CreateSession(c echo.Context) error {
	s := h.sessions.Create()
	return xhttp.CreatedResponse(c, h.format.toSnapshotResponse(s.Snapshot()))
}

func (h *DashboardHandler) GetSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return xhttp.ErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, h.format.toSnapshotResponse(s.Snapshot()))
}

func (h *DashboardHandler) DeleteSession(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.Remove(id) {
		return xhttp.ErrorResponse(c, sessionNotFound(id))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DashboardHandler) UpdateForm(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return xhttp.ErrorResponse(c, err)
	}

	req := &UpdateFormRequest{}
	if verr := xhttp.BindAndValidate(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	err = s.UpdateForm(usecase.FormUpdate{Stock: req.Stock, Start: req.Start, End: req.End})
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrUnknownInstrument):
		return xhttp.ErrorResponse(c, xhttp.BadRequest(codeUnknownInstrument, "unknown instrument").
			WithField("stock").WithParam("stock", *req.Stock).WithError(err))
	case errors.Is(err, usecase.ErrSessionClosed):
		return xhttp.ErrorResponse(c, sessionNotFound(s.ID()))
	default:
		h.logger.Error("form update failed", xlogger.Error(err))
		return xhttp.ErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, h.format.toSnapshotResponse(s.Snapshot()))
}

// Submit blocks until the prediction resolves. Validation and prediction
// failures are part of the session state, so they answer 200 with an error snapshot.
func (h *DashboardHandler) Submit(c echo.Context) error {
	id := c.Param("id")
	// A dropped client must not abort a prediction other streams are waiting on.
	ctx := context.WithoutCancel(c.Request().Context())

	snap, err := h.sessions.Submit(ctx, id)
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound), errors.Is(err, usecase.ErrSessionClosed):
		return xhttp.ErrorResponse(c, sessionNotFound(id))
	case errors.Is(err, usecase.ErrSubmissionInFlight):
		return xhttp.ErrorResponse(c, xhttp.Conflict(codeSubmissionInFlight, err.Error()).
			WithParam("phase", string(snap.Phase)).WithError(err))
	case errors.Is(err, usecase.ErrRateLimited):
		return xhttp.ErrorResponse(c, xhttp.TooManyRequests(codeRateLimited, err.Error()).WithError(err))
	case err == nil, snap.Phase == models.PhaseError:
		return xhttp.SuccessResponse(c, h.format.toSnapshotResponse(snap))
	default:
		h.logger.Error("submit failed", xlogger.String("session_id", id), xlogger.Error(err))
		return xhttp.ErrorResponse(c, err)
	}
}

func (h *DashboardHandler) session(c echo.Context) (*usecase.Session, error) {
	id := c.Param("id")
	s, err := h.sessions.Get(id)
	if err != nil {
		return nil, sessionNotFound(id)
	}
	return s, nil
}

func sessionNotFound(id string) *xhttp.AppError {
	return xhttp.NotFound(codeSessionNotFound, "session not found").WithParam("id", id)
}
