package api

import (
	"context"
	"errors"
	"net/http"

	"AstroCore/internal/domain/models"
	xhttp "AstroCore/pkg/http"
)

// chartFailure maps a calculator error onto an HTTP error. Timeouts are
// checked before ephemeris failures since a timed out lookup is reported as
// both.
func chartFailure(err error) *xhttp.AppError {
	var (
		tce *models.TimeConversionError
		uhs *models.UnsupportedHouseSystemError
		ece *models.EphemerisComputationError
	)
	switch {
	case errors.As(err, &tce):
		e := xhttp.NewAppError(tce.Code(), tce.Field, tce.Error(), http.StatusBadRequest)
		return e.WithParam("value", tce.Value).WithError(err)
	case errors.As(err, &uhs):
		return xhttp.UnprocessableError(uhs.Code(), uhs.Error()).
			WithParam("house_system", uhs.System.Code()).
			WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("chart calculation timed out").WithError(err)
	case errors.As(err, &ece):
		return xhttp.BadGatewayError(ece.Code(), "ephemeris computation failed").WithError(err)
	default:
		return xhttp.InternalError("chart calculation failed").WithError(err)
	}
}

func houseSystemError(field string, err error) *xhttp.AppError {
	e := xhttp.BadRequestError(err.Error())
	e.Code = "ERR_HOUSE_SYSTEM"
	e.Field = field
	return e.WithError(err)
}
