package shopapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

func registerCatalogRoutes() {
	webserver.PublicGET("/products", listProducts)
	webserver.PublicGET("/products/featured", featuredProducts)
	webserver.PublicGET("/products/:id", getProduct)
	webserver.PublicGET("/blog", listPosts)
	webserver.PublicGET("/blog/:id", getPost)
	webserver.PublicGET("/site", getSite)
}

func listProducts(c echo.Context) error {
	q := productQuery{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Text:     strings.TrimSpace(c.QueryParam("q")),
	}
	if v := c.QueryParam("featured"); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "featured must be a boolean")
		}
		q.Featured = &b
	}
	items, err := GetAppContext(c).Catalog().Products(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load products")
	}
	rows := filterProducts(items, q)
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "products": rows, "total": len(rows)})
}

func featuredProducts(c echo.Context) error {
	items, err := GetAppContext(c).Catalog().Products(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load products")
	}
	featured := true
	return ok(c, "products", filterProducts(items, productQuery{Featured: &featured}))
}

func getProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetAppContext(c).Catalog().Product(c.Request().Context(), id)
	if err == nil && !p.Visible() {
		err = domain.NewNotFound(domain.CollectionProducts, id)
	}
	if err != nil {
		return failErr(c, err, "Failed to load product")
	}
	return ok(c, "product", p)
}

func listPosts(c echo.Context) error {
	items, err := GetAppContext(c).Catalog().Posts(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load blog posts")
	}
	posts := publishedPosts(items)
	if cat := strings.TrimSpace(c.QueryParam("category")); cat != "" {
		kept := posts[:0]
		for _, b := range posts {
			if strings.EqualFold(b.Category, cat) {
				kept = append(kept, b)
			}
		}
		posts = kept
	}
	return ok(c, "blogPosts", posts)
}

func getPost(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid blog post ID", nil)
	}
	b, err := GetAppContext(c).Catalog().Post(c.Request().Context(), id)
	if err == nil && b.Status != domain.BlogPublished {
		err = domain.NewNotFound(domain.CollectionBlogPosts, id)
	}
	if err != nil {
		return failErr(c, err, "Failed to load blog post")
	}
	return ok(c, "blogPost", b)
}

func getSite(c echo.Context) error {
	site, err := GetAppContext(c).Site().SiteSettings(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load site settings")
	}
	return ok(c, "site", site)
}
