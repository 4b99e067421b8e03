package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderkaro/orderkaro/internal/domain/user"
)

// GetProfile returns the caller's account.
func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(u))
}

// UpdateProfile applies name and phone changes to the caller's account.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req user.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), identity(c).UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(u))
}
