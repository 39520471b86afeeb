package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/login", login)
	webserver.ApiGET("/me", currentUser)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return failErr(c, err, "Validation failed")
	}

	cfg := GetAppContext(c).Config()
	if !strings.EqualFold(strings.TrimSpace(payload.Username), cfg.Admin.Username) ||
		!webserver.CheckPassword(cfg.Admin.PasswordHash, payload.Password) {
		zap.L().Warn("admin login failed",
			zap.String("namespace", "adminapi"),
			zap.String("username", payload.Username),
			zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
	}

	token, err := webserver.IssueToken(cfg.Web.Secret, cfg.Admin.Username, cfg.Admin.TokenTTL, time.Now())
	if err != nil {
		return failErr(c, err, "Failed to issue token")
	}
	zap.L().Info("admin login", zap.String("namespace", "adminapi"), zap.String("username", cfg.Admin.Username))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"token":     token,
		"expiresIn": int64(cfg.Admin.TokenTTL.Seconds()),
		"username":  cfg.Admin.Username,
	})
}

func currentUser(c echo.Context) error {
	return ok(c, "username", webserver.CurrentUser(c))
}
