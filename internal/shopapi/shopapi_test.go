package shopapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/config"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/notify"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/store"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/whatsapp"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waEndpoint = "https://wa.me/255700000000"

type testApp struct {
	store    *store.Store
	cache    kvcache.Cache
	checkout *whatsapp.Checkout
	stream   *notify.Stream
}

func (a *testApp) Catalog() Catalog { return StoreCatalog{Store: a.store} }
func (a *testApp) Repos() *repository.Set { return repository.NewLocal(a.store) }
func (a *testApp) Cache() kvcache.Cache { return a.cache }
func (a *testApp) Checkout() *whatsapp.Checkout { return a.checkout }
func (a *testApp) Stream() *notify.Stream { return a.stream }
func (a *testApp) Site() SiteInfo { return a.store }

type harness struct {
	app     *testApp
	e       *echo.Echo
	cookies []*http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	cache := kvcache.NewMemory()
	for _, c := range domain.Collections {
		require.NoError(t, cache.Set(ctx, c.Key(), "[]"))
	}
	st := store.New(cache)
	products := []domain.Product{
		{Name: domain.Text{En: "Night Pants", Sw: "Suruali za Usiku"}, Price: 18000, Category: domain.CategoryBabyPants,
			Size: "L", Stock: 12, Status: domain.ProductActive, Featured: true, Tags: []string{"overnight"}},
		{Name: domain.Text{En: "Baby Wipes", Sw: "Vitambaa"}, Price: 4500, Category: domain.CategoryBabyWipes,
			Stock: 40, Status: domain.ProductActive},
		{Name: domain.Text{En: "Prototype Pad"}, Price: 9000, Category: domain.CategoryLadyPads,
			Stock: 0, Status: domain.ProductDraft, Featured: true},
	}
	for _, p := range products {
		_, err := st.AddProduct(ctx, p)
		require.NoError(t, err)
	}
	posts := []domain.BlogPost{
		{Title: domain.Text{En: "Choosing a size"}, ReadTime: 3, Category: "guides", Status: domain.BlogPublished},
		{Title: domain.Text{En: "Unreleased"}, ReadTime: 2, Category: "news", Status: domain.BlogDraft},
	}
	for _, b := range posts {
		_, err := st.AddBlogPost(ctx, b)
		require.NoError(t, err)
	}

	co, err := whatsapp.NewCheckout(waEndpoint, 1)
	require.NoError(t, err)
	app := &testApp{store: st, cache: cache, checkout: co, stream: notify.NewStream()}

	cfg := config.Default()
	cfg.Web.Secret = "shop-test"
	srv := webserver.Init(cfg, app)
	Init()
	return &harness{app: app, e: srv.Echo()}
}

// do sends the request with the harness session cookie and keeps any new one
func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range h.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	if cks := rec.Result().Cookies(); len(cks) > 0 {
		h.cookies = cks
	}
	return rec
}

type productsBody struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

type toastBody struct {
	Title domain.Text `json:"title"`
}

type cartBody struct {
	Success bool       `json:"success"`
	Cart    CartView   `json:"cart"`
	Toast   *toastBody `json:"toast"`
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func TestCatalogHidesDrafts(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name  string
		path  string
		names []string
	}{
		{"all visible", "/api/products", []string{"Night Pants", "Baby Wipes"}},
		{"by category", "/api/products?category=baby-wipes", []string{"Baby Wipes"}},
		{"search swahili", "/api/products?q=usiku", []string{"Night Pants"}},
		{"search tag", "/api/products?q=OVERNIGHT", []string{"Night Pants"}},
		{"featured", "/api/products?featured=true", []string{"Night Pants"}},
		{"featured route", "/api/products/featured", []string{"Night Pants"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var body productsBody
			decodeInto(t, rec, &body)
			var names []string
			for _, p := range body.Products {
				names = append(names, p.Name.En)
			}
			assert.Equal(t, tt.names, names)
		})
	}

	rec := h.do(t, http.MethodGet, "/api/products/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/products/3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/products?featured=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlogShowsPublishedOnly(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/blog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		BlogPosts []domain.BlogPost `json:"blogPosts"`
	}
	decodeInto(t, rec, &body)
	require.Len(t, body.BlogPosts, 1)
	assert.Equal(t, "Choosing a size", body.BlogPosts[0].Title.En)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/blog/1", "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/blog/2", "").Code)

	rec = h.do(t, http.MethodGet, "/api/site", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Yammi Yami Diapers")
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":2,"lang":"sw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body cartBody
	decodeInto(t, rec, &body)
	require.Len(t, body.Cart.Items, 1)
	assert.Equal(t, "Suruali za Usiku", body.Cart.Items[0].Name)
	assert.Equal(t, "L", body.Cart.Items[0].Size)
	assert.Equal(t, 2, body.Cart.Count)
	assert.Equal(t, int64(36000), body.Cart.Total)
	require.NotNil(t, body.Toast)
	assert.Equal(t, "Added to cart", body.Toast.Title.En)
	require.NotEmpty(t, h.cookies)

	rec = h.do(t, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":1}`)
	body = cartBody{}
	decodeInto(t, rec, &body)
	assert.Equal(t, 3, body.Cart.Count)

	rec = h.do(t, http.MethodPost, "/api/cart/items", `{"productId":2}`)
	body = cartBody{}
	decodeInto(t, rec, &body)
	assert.Len(t, body.Cart.Items, 2)
	assert.Equal(t, 4, body.Cart.Count)

	rec = h.do(t, http.MethodPut, "/api/cart/items/1", `{"quantity":5}`)
	body = cartBody{}
	decodeInto(t, rec, &body)
	assert.Equal(t, int64(5*18000+4500), body.Cart.Total)

	rec = h.do(t, http.MethodPut, "/api/cart/items/2", `{"quantity":0}`)
	body = cartBody{}
	decodeInto(t, rec, &body)
	assert.Len(t, body.Cart.Items, 1)

	rec = h.do(t, http.MethodPost, "/api/cart/items", `{"productId":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/cart/items", `{"productId":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	other := &harness{app: h.app, e: h.e}
	rec = other.do(t, http.MethodGet, "/api/cart", "")
	body = cartBody{}
	decodeInto(t, rec, &body)
	assert.Empty(t, body.Cart.Items)

	rec = h.do(t, http.MethodGet, "/api/cart", "")
	body = cartBody{}
	decodeInto(t, rec, &body)
	assert.Equal(t, 5, body.Cart.Count)

	rec = h.do(t, http.MethodDelete, "/api/cart/items/1", "")
	body = cartBody{}
	decodeInto(t, rec, &body)
	assert.Empty(t, body.Cart.Items)

	h.do(t, http.MethodPost, "/api/cart/items", `{"productId":2}`)
	rec = h.do(t, http.MethodDelete, "/api/cart", "")
	body = cartBody{}
	decodeInto(t, rec, &body)
	assert.Equal(t, 0, body.Cart.Count)
}

func TestCheckout(t *testing.T) {
	h := newHarness(t)
	form := `{"name":"Asha","phone":"0754111222","address":"Plot 4, Mikocheni","region":"Dar es Salaam"}`

	rec := h.do(t, http.MethodPost, "/api/checkout", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_CART")

	rec = h.do(t, http.MethodPost, "/api/checkout", `{"name":"Asha","region":"Atlantis"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	h.do(t, http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":2}`)
	rec = h.do(t, http.MethodPost, "/api/checkout", form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Checkout whatsapp.Handoff `json:"checkout"`
	}
	decodeInto(t, rec, &body)
	assert.True(t, strings.HasPrefix(body.Checkout.URL, waEndpoint+"?text="), body.Checkout.URL)
	assert.Equal(t, int64(36000), body.Checkout.Total)
	assert.NotEmpty(t, body.Checkout.Ref)
	assert.Contains(t, body.Checkout.Message, "Asha")

	rec = h.do(t, http.MethodGet, "/api/cart", "")
	var cb cartBody
	decodeInto(t, rec, &cb)
	assert.Empty(t, cb.Cart.Items)
}

func TestAgentApplication(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/registrations",
		`{"name":" Juma ","email":"juma@example.com","phone":"0713000000","region":"Mwanza","paymentReference":"MP1234"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Registration applicationStatus `json:"registration"`
	}
	decodeInto(t, rec, &body)
	assert.Equal(t, int64(1), body.Registration.ID)
	assert.Equal(t, "Juma", body.Registration.Name)
	assert.Equal(t, domain.RegistrationPending, body.Registration.Status)
	assert.NotContains(t, rec.Body.String(), "juma@example.com")

	rec = h.do(t, http.MethodGet, "/api/registrations/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)

	rec = h.do(t, http.MethodPost, "/api/registrations",
		`{"name":"Juma","email":"not-an-email","phone":"1","region":"Atlantis"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Email":"email"`)
	assert.Contains(t, rec.Body.String(), `"Region":"region"`)

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/registrations/99", "").Code)
	assert.Equal(t, 1, h.app.store.PendingRegistrations())
}

func TestEventStream(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.e)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))

	require.Eventually(t, func() bool { return h.app.stream.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	h.app.stream.Publish(domain.ChangeEvent{Type: domain.CollectionProducts, Action: domain.ActionUpdate, ID: 2})

	lines := make(chan string, 8)
	go func() {
		r := bufio.NewReader(resp.Body)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimSpace(line)
		}
	}()

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case line, open := <-lines:
			require.True(t, open, "stream closed early")
			if strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "data:") {
				got = append(got, line)
			}
		case <-timeout:
			t.Fatalf("no event received, got %v", got)
		}
	}
	assert.Equal(t, "event: products", got[0])
	assert.Contains(t, got[1], `"action":"update"`)
	assert.Contains(t, got[1], `"id":2`)
}
