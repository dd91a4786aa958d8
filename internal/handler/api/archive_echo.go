package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
	xhttp "AstroCore/pkg/http"
	"AstroCore/pkg/logger"
	"AstroCore/pkg/util"
)

// ArchiveEchoHandler reads back archived chart points.
type ArchiveEchoHandler struct {
	log     *logger.Logger
	archive domrepo.ChartArchive
	now     func() time.Time
}

func NewArchiveEchoHandler(log *logger.Logger, archive domrepo.ChartArchive) *ArchiveEchoHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ArchiveEchoHandler{log: log, archive: archive, now: time.Now}
}

var _ xhttp.Handler = (*ArchiveEchoHandler)(nil)

func (h *ArchiveEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/archive")
	g.GET("/points", h.Points)
	g.GET("/health", h.Health)
}

func (h *ArchiveEchoHandler) Points(c echo.Context) error {
	req := &models.ArchiveQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	to := h.now().UTC()
	if req.To != "" {
		t, ok := util.ParseTime(req.To)
		if !ok {
			return xhttp.AppErrorResponse(c, timeParamError("to", req.To))
		}
		to = t
	}
	from := to.Add(-24 * time.Hour)
	if req.From != "" {
		t, ok := util.ParseTime(req.From)
		if !ok {
			return xhttp.AppErrorResponse(c, timeParamError("from", req.From))
		}
		from = t
	}
	if from.After(to) {
		e := xhttp.BadRequestError("from must not be after to")
		e.Field = "from"
		return xhttp.AppErrorResponse(c, e)
	}

	records, err := h.archive.Query(c.Request().Context(), models.ChartKind(req.Kind), from, to, req.Limit)
	if err != nil {
		h.log.Error("archive query failed", logger.String("kind", req.Kind), logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("ERR_ARCHIVE", "archive query failed").WithError(err))
	}
	if records == nil {
		records = []models.ChartRecord{}
	}
	return xhttp.SuccessResponse(c, records)
}

func (h *ArchiveEchoHandler) Health(c echo.Context) error {
	if err := h.archive.Health(c.Request().Context()); err != nil {
		h.log.Warn("archive unhealthy", logger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func timeParamError(field, value string) *xhttp.AppError {
	e := xhttp.BadRequestErrorf("%s must be RFC3339 or unix seconds, got %q", field, value)
	e.Field = field
	return e
}
