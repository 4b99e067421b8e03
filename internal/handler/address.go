package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderkaro/orderkaro/internal/domain/address"
)

type addressRequest struct {
	Name         *string `json:"name"`
	FullName     *string `json:"full_name"`
	Phone        *string `json:"phone"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
	IsDefault    *bool   `json:"is_default"`
}

func (r addressRequest) fields() address.Fields {
	return address.Fields{
		Name:         r.Name,
		FullName:     r.FullName,
		Phone:        r.Phone,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
		IsDefault:    r.IsDefault,
	}
}

// ListAddresses returns the caller's address book.
func (h *Handler) ListAddresses(c *gin.Context) {
	book, err := h.addresses.List(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// AddAddress stores a new address. The first address, or one flagged as
// default, becomes the user's default.
func (h *Handler) AddAddress(c *gin.Context) {
	var req addressRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.addresses.Add(c.Request.Context(), identity(c).UserID, req.fields())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// UpdateAddress merges the provided fields into an existing address.
func (h *Handler) UpdateAddress(c *gin.Context) {
	var req addressRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.addresses.Update(c.Request.Context(), identity(c).UserID, c.Param("id"), req.fields())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAddress removes an address, promoting another to default when the
// default was deleted.
func (h *Handler) DeleteAddress(c *gin.Context) {
	if err := h.addresses.Delete(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully"})
}
