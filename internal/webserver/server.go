// Package webserver hosts the echo instance shared by the admin and storefront APIs.
// Handlers register through the package-level ApiGET/PublicGET helpers after Init.
package webserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

const (
	appCtxKey = "appctx"

	// AdminPrefix is protected by the JWT middleware except for LoginPath
	AdminPrefix = "/api/admin"
	LoginPath   = AdminPrefix + "/login"
)

type AdminServer struct {
	root   *echo.Echo
	api    *echo.Group
	admin  *echo.Group
	addr   string
	secret string
}

var server *AdminServer

// Init builds a fresh server; appCtx is exposed to handlers through GetAppContext
func Init(cfg *config.AppConfig, appCtx interface{}) *AdminServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &entityValidator{}
	e.HTTPErrorHandler = httpErrorHandler
	if cfg.System.Debug {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Path(), "/events")
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("namespace", "webserver"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appCtxKey, appCtx)
			return next(c)
		}
	})

	s := &AdminServer{
		root:   e,
		addr:   cfg.Addr(),
		secret: cfg.Web.Secret,
	}
	s.api = e.Group("/api", session.Middleware(sessions.NewCookieStore([]byte(cfg.Web.Secret))))
	s.admin = e.Group(AdminPrefix, echojwt.WithConfig(echojwt.Config{
		Skipper: func(c echo.Context) bool {
			return c.Path() == LoginPath
		},
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return ParseToken(s.secret, auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token").SetInternal(err)
		},
	}))
	server = s
	return s
}

// Echo exposes the root instance, used by tests through ServeHTTP
func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

// Listen serves until ctx is cancelled, then shuts down with a short grace period
func (s *AdminServer) Listen(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("web server listening", zap.String("namespace", "webserver"), zap.String("addr", s.addr))
		errCh <- s.root.Start(s.addr)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.root.Shutdown(shutdownCtx)
	}
}

func current() *AdminServer {
	if server == nil {
		panic("webserver: Init must be called before registering routes")
	}
	return server
}

// GetAppContext returns the value passed to Init
func GetAppContext(c echo.Context) interface{} {
	return c.Get(appCtxKey)
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	current().admin.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	current().admin.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	current().admin.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	current().admin.DELETE(path, h, m...)
}

// PublicGET registers a storefront route under /api
func PublicGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	current().api.GET(path, h, m...)
}

func PublicPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	current().api.POST(path, h, m...)
}

func PublicPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	current().api.PUT(path, h, m...)
}

func PublicDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	current().api.DELETE(path, h, m...)
}
