package api

import (
	"strings"

	"github.com/labstack/echo/v4"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/domain/service"
	xhttp "AstroCore/pkg/http"
	"AstroCore/pkg/logger"
	"AstroCore/pkg/util"
)

// ChartsEchoHandler serves chart calculations over HTTP.
type ChartsEchoHandler struct {
	log       *logger.Logger
	natal     service.NatalCharter
	transit   service.TransitCharter
	composite service.CompositeCharter
	mw        []echo.MiddlewareFunc
	defaultHS models.HouseSystem
}

// HandlerOption configures ChartsEchoHandler.
type HandlerOption func(*ChartsEchoHandler)

// WithRouteMiddleware applies mw to the chart routes only.
func WithRouteMiddleware(mw ...echo.MiddlewareFunc) HandlerOption {
	return func(h *ChartsEchoHandler) { h.mw = append(h.mw, mw...) }
}

// WithDefaultHouseSystem is used when a request names no house system.
func WithDefaultHouseSystem(hs models.HouseSystem) HandlerOption {
	return func(h *ChartsEchoHandler) { h.defaultHS = hs }
}

func NewChartsEchoHandler(
	log *logger.Logger,
	natal service.NatalCharter,
	transit service.TransitCharter,
	composite service.CompositeCharter,
	opts ...HandlerOption,
) *ChartsEchoHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &ChartsEchoHandler{
		log:       log,
		natal:     natal,
		transit:   transit,
		composite: composite,
		defaultHS: models.WholeSign,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ xhttp.Handler = (*ChartsEchoHandler)(nil)

func (h *ChartsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/charts", h.mw...)
	g.POST("/natal", h.Natal)
	g.POST("/transits", h.Transits)
	g.POST("/composite", h.Composite)
}

func (h *ChartsEchoHandler) Natal(c echo.Context) error {
	req := &models.NatalChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	hs, err := h.houseSystem(req.HouseSystem)
	if err != nil {
		return xhttp.AppErrorResponse(c, houseSystemError("house_system", err))
	}

	chart, err := h.natal.Compute(c.Request().Context(), models.NatalRequest{
		Birth:       req.ToBirthData(),
		HouseSystem: hs,
		WithAspects: models.BoolValue(req.Aspects, true),
	})
	if err != nil {
		return h.fail(c, models.KindNatal, err)
	}
	return xhttp.SuccessResponse(c, chart)
}

func (h *ChartsEchoHandler) Transits(c echo.Context) error {
	req := &models.TransitChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tr := models.TransitRequest{WithAspects: models.BoolValue(req.Aspects, true)}
	if req.At != "" {
		at, ok := util.ParseTime(req.At)
		if !ok {
			e := xhttp.BadRequestErrorf("at must be RFC3339 or unix seconds, got %q", req.At)
			e.Field = "at"
			return xhttp.AppErrorResponse(c, e)
		}
		tr.At = at
	}

	ctx := c.Request().Context()
	if req.Natal != nil {
		hs, err := h.houseSystem(req.HouseSystem)
		if err != nil {
			return xhttp.AppErrorResponse(c, houseSystemError("house_system", err))
		}
		natal, err := h.natal.Compute(ctx, models.NatalRequest{
			Birth:       req.Natal.ToBirthData(),
			HouseSystem: hs,
		})
		if err != nil {
			return h.fail(c, models.KindNatal, err)
		}
		tr.Natal = natal
	}

	chart, err := h.transit.Compute(ctx, tr)
	if err != nil {
		return h.fail(c, models.KindTransit, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, chart)
}

func (h *ChartsEchoHandler) Composite(c echo.Context) error {
	req := &models.CompositeChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	hs, err := h.houseSystem(req.HouseSystem)
	if err != nil {
		return xhttp.AppErrorResponse(c, houseSystemError("house_system", err))
	}

	chart, err := h.composite.Compute(c.Request().Context(), models.CompositeRequest{
		A:           req.PersonA.ToBirthData(),
		B:           req.PersonB.ToBirthData(),
		HouseSystem: hs,
		WithAspects: models.BoolValue(req.Aspects, true),
	})
	if err != nil {
		return h.fail(c, models.KindComposite, err)
	}
	return xhttp.SuccessResponse(c, chart)
}

func (h *ChartsEchoHandler) houseSystem(s string) (models.HouseSystem, error) {
	if strings.TrimSpace(s) == "" {
		return h.defaultHS, nil
	}
	return models.ParseHouseSystem(s)
}

func (h *ChartsEchoHandler) fail(c echo.Context, kind models.ChartKind, err error) error {
	appErr := chartFailure(err)
	if appErr.Status >= 500 {
		h.log.Error("chart request failed",
			logger.String("kind", string(kind)),
			logger.String("code", appErr.Code),
			logger.Error(err),
		)
	} else {
		h.log.Debug("chart request rejected",
			logger.String("kind", string(kind)),
			logger.String("code", appErr.Code),
			logger.Error(err),
		)
	}
	return xhttp.AppErrorResponse(c, appErr)
}
