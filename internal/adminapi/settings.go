package adminapi

import (
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerSettingsRoutes() {
	webserver.ApiGET("/settings/:kind", getSettings)
	webserver.ApiPUT("/settings/:kind", saveSettings)
}

func settingsKind(c echo.Context) (domain.SettingsKind, bool) {
	kind := domain.SettingsKind(c.Param("kind"))
	if !kind.Valid() {
		_ = fail(c, http.StatusNotFound, "NOT_FOUND", "Unknown settings kind "+string(kind), nil)
		return kind, false
	}
	return kind, true
}

func getSettings(c echo.Context) error {
	kind, valid := settingsKind(c)
	if !valid {
		return nil
	}
	values, err := GetAppContext(c).SettingsStore().Settings(c.Request().Context(), kind)
	if err != nil {
		return failErr(c, err, "Failed to read settings")
	}
	return ok(c, "settings", values)
}

// saveSettings merges the posted fields; form strings are coerced to the typed settings
func saveSettings(c echo.Context) error {
	kind, valid := settingsKind(c)
	if !valid {
		return nil
	}
	patch := map[string]interface{}{}
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	values, err := GetAppContext(c).SettingsStore().SaveSettings(c.Request().Context(), kind, patch)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_SETTINGS", "Failed to save settings", err.Error())
	}
	return ok(c, "settings", values)
}
