package shopapi

import (
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/whatsapp"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func registerCheckoutRoutes() {
	webserver.PublicPOST("/checkout", checkout)
}

// checkout hands the session cart to WhatsApp and empties it
func checkout(c echo.Context) error {
	var form whatsapp.CheckoutForm
	if err := c.Bind(&form); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout form", err.Error())
	}
	if err := c.Validate(&form); err != nil {
		return failErr(c, err, "Validation failed")
	}
	ct, err := sessionCart(c, nil)
	if err != nil {
		return failErr(c, err, "Failed to open cart")
	}
	h, err := GetAppContext(c).Checkout().Submit(c.Request().Context(), ct, form)
	if errors.Is(err, whatsapp.ErrEmptyCart) {
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Your cart is empty", nil)
	}
	if err != nil {
		return failErr(c, err, "Checkout failed")
	}
	return ok(c, "checkout", h)
}
