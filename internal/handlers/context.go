package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/ephemeral"
	"github.com/tahmidr/glowfeed/backend/internal/models"
)

// getUserIDFromContext returns the authenticated user's id, or 0 when the
// request carries no valid claims.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// ephemeralHTTPError maps the ephemeral package's sentinel errors onto
// status codes.
func ephemeralHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ephemeral.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ephemeral.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ephemeral.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
