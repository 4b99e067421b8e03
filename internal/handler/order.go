package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orderkaro/orderkaro/internal/domain/address"
	"github.com/orderkaro/orderkaro/internal/domain/order"
)

type orderLineView struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderView struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []orderLineView `json:"items"`
	ShippingAddress address.Address `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	TotalAmount     float64         `json:"total_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toOrderView(o *order.Order) orderView {
	items := make([]orderLineView, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = orderLineView{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice.InexactFloat64(),
		}
	}
	return orderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ListOrders returns the caller's orders in creation order.
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListForUser(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderView, len(orders))
	for i := range orders {
		out[i] = toOrderView(&orders[i])
	}
	c.JSON(http.StatusOK, out)
}

type createOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Items           []createOrderItem `json:"items"`
	ShippingAddress address.Address   `json:"shipping_address"`
	PaymentMethod   string            `json:"payment_method"`
}

// CreateOrder places an order from the given lines. Prices are captured at
// placement time and stock is reserved atomically.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	lines := make([]order.RequestLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = order.RequestLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	o, err := h.orders.Create(c.Request.Context(), identity(c).UserID, order.CreateRequest{
		Lines:           lines,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderView(o))
}

// GetOrder returns one of the caller's orders.
func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o))
}

// CancelOrder cancels a pending or processing order.
func (h *Handler) CancelOrder(c *gin.Context) {
	o, err := h.orders.Cancel(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o))
}
