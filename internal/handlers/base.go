package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/gNutty/vesselradar/pkg/tracking"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseUUID parses a UUID from a path parameter
func ParseUUID(c echo.Context, param string) (uuid.UUID, error) {
	idStr := c.Param(param)
	if idStr == "" {
		return uuid.Nil, httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", param)
	}

	return id, nil
}

// bindQuery reads query parameters into T and validates it.
func bindQuery[T any](c echo.Context) (T, error) {
	var req T
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return req, httperror.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := validate.Struct(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed rule '%s'", fe.Field(), fe.Tag()))
	}
	return httperror.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, "; "))
}

// domainError maps resolver errors onto HTTP errors.
func domainError(err error) error {
	switch {
	case errors.Is(err, tracking.ErrInvalidArgument):
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, tracking.ErrNotFound):
		return httperror.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, tracking.ErrConfiguration):
		return httperror.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case httperror.IsHTTPError(err):
		return err
	default:
		return httperror.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
