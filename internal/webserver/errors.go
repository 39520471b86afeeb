package webserver

import (
	"errors"
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type entityValidator struct{}

func (entityValidator) Validate(i interface{}) error {
	return domain.Validate(i)
}

// FieldErrors flattens validator errors into field -> rule
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// httpErrorHandler renders errors that escape handlers in the API envelope
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := err.Error()

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
		switch status {
		case http.StatusUnauthorized:
			code = "UNAUTHORIZED"
		case http.StatusNotFound:
			code = "NOT_FOUND"
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case http.StatusBadRequest:
			code = "INVALID_REQUEST"
		}
	case domain.IsNotFound(err):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case domain.IsInvalidTransition(err):
		status, code = http.StatusConflict, "INVALID_TRANSITION"
	case domain.IsConflict(err):
		status, code = http.StatusConflict, "CONFLICT"
	}
	if status >= 500 {
		zap.L().Error("request failed",
			zap.String("namespace", "webserver"),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}

	body := map[string]interface{}{"success": false, "error": message, "code": code}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		zap.L().Warn("write error response", zap.String("namespace", "webserver"), zap.Error(err))
	}
}
