package laborder

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/laborders/internal/platform/auth"
	"github.com/ehr/laborders/pkg/pagination"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "lab_tech"))
	readGroup.GET("/patients/:patientId/lab-orders", h.ListLabOrders)
	readGroup.GET("/lab-orders/legend", h.GetLegend)
	readGroup.GET("/lab-encounters/:id", h.GetLabEncounter)
	readGroup.GET("/lab-encounters/:id/print", h.GetPrintAction)
	readGroup.GET("/lab-encounters/:id/email", h.GetEmailAction)
}

// ListLabOrders renders the lab orders table for a patient.
func (h *Handler) ListLabOrders(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil || pid == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	req := TableRequest{
		Search:    c.QueryParam("q"),
		RowFilter: c.QueryParam("filter"),
		Page:      pg.Page,
		PageSize:  pg.PageSize,
		Expand:    expandParam(c),
	}

	view := h.svc.BuildTable(c.Request().Context(), pid, req)
	if view.Status == ViewError {
		h.logger.Error().
			Str("patient_id", pid.String()).
			Str("error", view.Error).
			Msg("lab orders fetch failed")
		return c.JSON(http.StatusBadGateway, view)
	}
	view.Links = view.Page.Links(c.Request().URL.Path, c.QueryParams())
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) GetLegend(c echo.Context) error {
	return c.JSON(http.StatusOK, Legend())
}

func (h *Handler) GetLabEncounter(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	enc, err := h.svc.GetEncounter(c.Request().Context(), id)
	if err != nil {
		return h.encounterError(err)
	}
	return c.JSON(http.StatusOK, enc)
}

func (h *Handler) GetPrintAction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.PrintDescriptor(c.Request().Context(), id)
	if err != nil {
		return h.encounterError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) GetEmailAction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.EmailDescriptor(c.Request().Context(), id)
	if err != nil {
		return h.encounterError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) encounterError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "lab encounter not found")
	}
	h.logger.Error().Err(err).Msg("lab encounter lookup failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// expandParam collects row IDs from repeated or comma-separated "expand"
// query parameters.
func expandParam(c echo.Context) []string {
	var ids []string
	for _, v := range c.QueryParams()["expand"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
