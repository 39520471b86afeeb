package shopapi

import (
	"net/http"
	"strconv"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/cart"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
)

type addItemRequest struct {
	ProductID int64  `json:"productId" form:"productId" validate:"gt=0"`
	Quantity  int    `json:"quantity" form:"quantity" validate:"gte=0,lte=999"`
	Lang      string `json:"lang" form:"lang" validate:"omitempty,oneof=en sw"`
}

type quantityRequest struct {
	Quantity int `json:"quantity" form:"quantity" validate:"gte=0,lte=999"`
}

// CartView is the cart as returned to the shopper
type CartView struct {
	Items []domain.CartItem `json:"items"`
	Count int               `json:"count"`
	Total int64             `json:"total"`
}

func viewOf(ct *cart.Cart) CartView {
	items := ct.Items()
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartView{Items: items, Count: ct.ItemCount(), Total: ct.Total()}
}

func registerCartRoutes() {
	webserver.PublicGET("/cart", getCart)
	webserver.PublicPOST("/cart/items", addCartItem)
	webserver.PublicPUT("/cart/items/:id", updateCartItem)
	webserver.PublicDELETE("/cart/items/:id", removeCartItem)
	webserver.PublicDELETE("/cart", clearCart)
}

func respondCart(c echo.Context, ct *cart.Cart, toasts []cart.Toast) error {
	body := map[string]interface{}{"success": true, "cart": viewOf(ct)}
	if len(toasts) > 0 {
		body["toast"] = toasts[len(toasts)-1]
	}
	return c.JSON(http.StatusOK, body)
}

func getCart(c echo.Context) error {
	ct, err := sessionCart(c, nil)
	if err != nil {
		return failErr(c, err, "Failed to open cart")
	}
	if _, err := ct.Load(c.Request().Context()); err != nil {
		return failErr(c, err, "Failed to load cart")
	}
	return respondCart(c, ct, nil)
}

// addCartItem snapshots the product at its current price into the cart
func addCartItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return failErr(c, err, "Validation failed")
	}
	ctx := c.Request().Context()
	p, err := GetAppContext(c).Catalog().Product(ctx, req.ProductID)
	if err == nil && !p.Visible() {
		err = domain.NewNotFound(domain.CollectionProducts, req.ProductID)
	}
	if err != nil {
		return failErr(c, err, "Failed to load product")
	}

	var toasts []cart.Toast
	ct, err := sessionCart(c, &toasts)
	if err != nil {
		return failErr(c, err, "Failed to open cart")
	}
	item := domain.CartItem{
		ID:         p.ID,
		Name:       p.Name.Lang(req.Lang),
		Price:      p.Price,
		Image:      p.Image,
		Quantity:   req.Quantity,
		Size:       p.Size,
		BundleSize: p.BundleSize,
	}
	if err := ct.AddItem(ctx, item); err != nil {
		return failErr(c, err, "Failed to update cart")
	}
	return respondCart(c, ct, toasts)
}

func cartItemID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
		return 0, false
	}
	return id, true
}

func updateCartItem(c echo.Context) error {
	id, valid := cartItemID(c)
	if !valid {
		return nil
	}
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return failErr(c, err, "Validation failed")
	}
	ct, err := sessionCart(c, nil)
	if err != nil {
		return failErr(c, err, "Failed to open cart")
	}
	if err := ct.UpdateQuantity(c.Request().Context(), id, req.Quantity); err != nil {
		return failErr(c, err, "Failed to update cart")
	}
	return respondCart(c, ct, nil)
}

func removeCartItem(c echo.Context) error {
	id, valid := cartItemID(c)
	if !valid {
		return nil
	}
	ct, err := sessionCart(c, nil)
	if err != nil {
		return failErr(c, err, "Failed to open cart")
	}
	if err := ct.RemoveItem(c.Request().Context(), id); err != nil {
		return failErr(c, err, "Failed to update cart")
	}
	return respondCart(c, ct, nil)
}

func clearCart(c echo.Context) error {
	ct, err := sessionCart(c, nil)
	if err != nil {
		return failErr(c, err, "Failed to open cart")
	}
	if err := ct.Clear(c.Request().Context()); err != nil {
		return failErr(c, err, "Failed to clear cart")
	}
	return respondCart(c, ct, nil)
}
