// Package adminapi is the back-office HTTP API under /api/admin. The same routes
// serve as the remote repository backend for other deployments.
package adminapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/notify"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

// SettingsStore persists the settings objects
type SettingsStore interface {
	Settings(ctx context.Context, kind domain.SettingsKind) (map[string]interface{}, error)
	SaveSettings(ctx context.Context, kind domain.SettingsKind, patch map[string]interface{}) (map[string]interface{}, error)
	NotificationSettings(ctx context.Context) (domain.NotificationSettings, error)
}

// AppContext is what the admin handlers need from the application
type AppContext interface {
	Config() *config.AppConfig
	Repos() *repository.Set
	SettingsStore() SettingsStore
	// Mailer may return nil when mail is disabled
	Mailer() *notify.Mailer
}

func GetAppContext(c echo.Context) AppContext {
	return webserver.GetAppContext(c).(AppContext)
}

func GetRepos(c echo.Context) *repository.Set {
	return GetAppContext(c).Repos()
}

// Init registers every admin route on the current webserver
func Init() {
	registerAuthRoutes()
	registerProductRoutes()
	registerOrderRoutes()
	registerBlogRoutes()
	registerAgentRoutes()
	registerRegistrationRoutes()
	registerSettingsRoutes()
	registerDashboardRoutes()
	registerExportRoutes()
}

func ok(c echo.Context, key string, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, key: data})
}

func paged(c echo.Context, key string, rows interface{}, total int64, f repository.Filter) error {
	body := map[string]interface{}{"success": true, key: rows, "total": total}
	if f.PageSize > 0 {
		body["page"] = f.Page
		body["perPage"] = f.PageSize
	}
	return c.JSON(http.StatusOK, body)
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	body := map[string]interface{}{"success": false, "error": message, "code": code}
	if details != nil {
		body["details"] = details
	}
	return c.JSON(status, body)
}

// failErr maps domain and validation errors onto status codes
func failErr(c echo.Context, err error, message string) error {
	switch {
	case domain.IsNotFound(err):
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case domain.IsInvalidTransition(err):
		return fail(c, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case domain.IsConflict(err):
		return fail(c, http.StatusConflict, "CONFLICT", err.Error(), nil)
	}
	if fields := webserver.FieldErrors(err); fields != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", fields)
	}
	zap.L().Error(message,
		zap.String("namespace", "adminapi"),
		zap.String("path", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, err.Error())
}

// parseFilter reads list query parameters. Paging applies only when page or perPage is given.
func parseFilter(c echo.Context) (repository.Filter, error) {
	f := repository.Filter{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Status:   strings.TrimSpace(c.QueryParam("status")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Region:   strings.TrimSpace(c.QueryParam("region")),
		Sort:     strings.TrimSpace(c.QueryParam("sort")),
		Desc:     strings.EqualFold(strings.TrimSpace(c.QueryParam("order")), "desc"),
	}

	pageStr, perPageStr := c.QueryParam("page"), c.QueryParam("perPage")
	if pageStr != "" || perPageStr != "" {
		f.Page = 1
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			f.Page = p
		}
		f.PageSize = defaultPageSize
		if ps, err := strconv.Atoi(perPageStr); err == nil && ps > 0 && ps <= maxPageSize {
			f.PageSize = ps
		}
	}

	if v := c.QueryParam("featured"); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "featured must be a boolean")
		}
		f.Featured = &b
	}
	var err error
	if f.From, err = parseDate(c.QueryParam("from")); err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
	}
	if f.To, err = parseDate(c.QueryParam("to")); err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(s)
}

func parseInt64ID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseStringID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "empty id")
	}
	return s, nil
}
