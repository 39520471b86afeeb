package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *AdminServer {
	t.Helper()
	cfg := config.Default()
	cfg.Web.Secret = "test-secret"
	s := Init(cfg, "ctx-value")
	ApiGET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"user": CurrentUser(c), "ctx": GetAppContext(c)})
	})
	ApiPOST("/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "login")
	})
	PublicGET("/session", func(c echo.Context) error {
		id, err := SessionID(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, id)
	})
	PublicGET("/boom/:kind", func(c echo.Context) error {
		switch c.Param("kind") {
		case "missing":
			return domain.NewNotFound(domain.CollectionProducts, 9)
		case "transition":
			return domain.NewInvalidTransition(domain.CollectionOrders, "completed", "pending")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "bad input")
	})
	return s
}

func serve(s *AdminServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/admin/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)

	rec = serve(s, httptest.NewRequest(http.MethodPost, LoginPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := IssueToken("test-secret", "admin", time.Hour, time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"admin","ctx":"ctx-value"}`, rec.Body.String())
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := IssueToken("s", "admin", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseToken("s", expired)
	assert.Error(t, err)

	valid, err := IssueToken("s", "admin", time.Hour, time.Now())
	require.NoError(t, err)
	_, err = ParseToken("other", valid)
	assert.Error(t, err)
}

func TestErrorHandlerMapsDomainErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		kind   string
		status int
		code   string
	}{
		{"missing", http.StatusNotFound, "NOT_FOUND"},
		{"transition", http.StatusConflict, "INVALID_TRANSITION"},
		{"bad", http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/boom/"+tt.kind, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestSessionIDIsStable(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()
	require.NotEmpty(t, first)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = serve(s, req)
	assert.Equal(t, first, rec.Body.String())
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("yammiyami")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "yammiyami"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
