// Package shopapi is the public storefront API under /api: catalog reads,
// session carts, WhatsApp checkout, agent applications and the change feed.
package shopapi

import (
	"context"
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/cart"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/notify"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/whatsapp"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SiteInfo provides the public site settings
type SiteInfo interface {
	SiteSettings(ctx context.Context) (domain.SiteSettings, error)
}

// AppContext is what the storefront handlers need from the application
type AppContext interface {
	Catalog() Catalog
	Repos() *repository.Set
	Cache() kvcache.Cache
	Checkout() *whatsapp.Checkout
	Stream() *notify.Stream
	Site() SiteInfo
}

func GetAppContext(c echo.Context) AppContext {
	return webserver.GetAppContext(c).(AppContext)
}

// Init registers every storefront route on the current webserver
func Init() {
	registerCatalogRoutes()
	registerCartRoutes()
	registerCheckoutRoutes()
	registerRegistrationRoutes()
	registerEventRoutes()
}

func ok(c echo.Context, key string, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, key: data})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	body := map[string]interface{}{"success": false, "error": message, "code": code}
	if details != nil {
		body["details"] = details
	}
	return c.JSON(status, body)
}

func failErr(c echo.Context, err error, message string) error {
	if domain.IsNotFound(err) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	if fields := webserver.FieldErrors(err); fields != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", fields)
	}
	zap.L().Error(message,
		zap.String("namespace", "shopapi"),
		zap.String("path", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

// sessionCart opens the cart of the requesting shopper. Toasts raised by
// cart operations are collected into toasts.
func sessionCart(c echo.Context, toasts *[]cart.Toast) (*cart.Cart, error) {
	sid, err := webserver.SessionID(c)
	if err != nil {
		return nil, err
	}
	var toaster cart.Toaster
	if toasts != nil {
		toaster = cart.ToasterFunc(func(t cart.Toast) { *toasts = append(*toasts, t) })
	}
	return cart.New(GetAppContext(c).Cache(), domain.SessionCartKey(sid), toaster), nil
}
