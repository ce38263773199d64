package api

import (
	"errors"

	"PowerCast/internal/chart"
	"PowerCast/internal/domain/models"
	"PowerCast/internal/usecase"
	xhttp "PowerCast/pkg/http"
)

// toAppError maps domain and usecase errors to HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, usecase.ErrReplayActive), errors.Is(err, usecase.ErrSubmitInFlight):
		return xhttp.ConflictError(err.Error())
	case errors.Is(err, usecase.ErrRateLimited):
		return xhttp.TooManyRequestsError(err.Error())
	case errors.Is(err, chart.ErrNotEnoughPoints):
		return xhttp.ConflictError(err.Error())
	}

	var pe *models.PredictionError
	if !errors.As(err, &pe) {
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
	switch pe.Kind {
	case models.KindUpstream:
		return xhttp.UnprocessableError(pe.Message).WithParam("op", pe.Op)
	case models.KindDataShape:
		return xhttp.BadGatewayError("ERR_DATA_SHAPE", pe.Error())
	default:
		return xhttp.BadGatewayError("ERR_NETWORK", pe.Error())
	}
}
