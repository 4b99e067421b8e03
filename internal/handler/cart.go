package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orderkaro/orderkaro/internal/domain/cart"
)

type cartItemView struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

type cartView struct {
	Items       []cartItemView `json:"items"`
	TotalItems  int            `json:"total_items"`
	TotalAmount float64        `json:"total_amount"`
}

func toCartView(v *cart.View) cartView {
	items := make([]cartItemView, len(v.Items))
	for i, it := range v.Items {
		items[i] = cartItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			AddedAt:   it.AddedAt,
		}
	}
	return cartView{
		Items:       items,
		TotalItems:  v.TotalItems,
		TotalAmount: v.TotalAmount.InexactFloat64(),
	}
}

// GetCart returns the caller's cart with derived totals.
func (h *Handler) GetCart(c *gin.Context) {
	v, err := h.carts.Get(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(v))
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddCartItem adds a product to the cart, accumulating quantity when the
// product is already present.
func (h *Handler) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.carts.AddItem(c.Request.Context(), identity(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartView(v))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem replaces a cart line's quantity. A zero or negative
// quantity removes the line.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.carts.UpdateQuantity(c.Request.Context(), identity(c).UserID, c.Param("id"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(v))
}

// RemoveCartItem removes a cart line. Removing an absent line is a no-op.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	v, err := h.carts.RemoveItem(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(v))
}

// ClearCart empties the caller's cart.
func (h *Handler) ClearCart(c *gin.Context) {
	v, err := h.carts.Clear(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(v))
}
