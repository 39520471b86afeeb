package adminapi

import (
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/export"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerExportRoutes() {
	webserver.ApiGET("/export/products.csv", exportProducts)
	webserver.ApiGET("/export/orders.csv", exportOrders)
	webserver.ApiGET("/export/agents.xlsx", exportAgents)
}

func attachment(c echo.Context, contentType, filename string) {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)
}

func exportProducts(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return err
	}
	rows, _, err := GetRepos(c).Products.List(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err, "Failed to query products")
	}
	attachment(c, "text/csv; charset=utf-8", "products.csv")
	return export.ProductsCSV(c.Response(), rows)
}

func exportOrders(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return err
	}
	rows, _, err := GetRepos(c).Orders.List(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err, "Failed to query orders")
	}
	attachment(c, "text/csv; charset=utf-8", "orders.csv")
	return export.OrdersCSV(c.Response(), rows)
}

func exportAgents(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return err
	}
	rows, _, err := GetRepos(c).Agents.List(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err, "Failed to query agents")
	}
	attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "agents.xlsx")
	return export.AgentsXLSX(c.Response(), rows)
}
