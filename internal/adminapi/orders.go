package adminapi

import (
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
)

type orderStatusPayload struct {
	Status domain.OrderStatus `json:"status" validate:"required,oneof=pending processing shipped completed cancelled"`
}

var orderResource = resource[domain.Order, string]{
	collection: domain.CollectionOrders,
	repo:       func(s *repository.Set) repository.Repository[domain.Order, string] { return s.Orders },
	parseID:    parseStringID,
	setID:      func(o *domain.Order, id string) { o.ID = id },
	defaults:   func(o *domain.Order) { o.Normalize() },
}

// registerOrderRoutes registers order CRUD and the status transition endpoint
func registerOrderRoutes() {
	orderResource.register()
	webserver.ApiPUT("/orders/:id/status", updateOrderStatus)
}

func updateOrderStatus(c echo.Context) error {
	id, valid := orderResource.id(c)
	if !valid {
		return nil
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return failErr(c, err, "Validation failed")
	}
	o, err := GetRepos(c).OrderStatus.UpdateStatus(c.Request().Context(), id, payload.Status)
	if err != nil {
		return failErr(c, err, "Failed to update order status")
	}
	return ok(c, "order", o)
}
