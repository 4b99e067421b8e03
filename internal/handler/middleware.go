package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orderkaro/orderkaro/internal/domain/auth"
)

const identityKey = "identity"

// requireAuth resolves the bearer token and stores the caller identity on
// the request context. Missing or invalid tokens answer 401.
func (h *Handler) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		writeMessage(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := h.tokens.ResolveToken(c.Request.Context(), token)
	if err != nil {
		writeMessage(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	c.Set(identityKey, id)
	c.Next()
}

// identity returns the authenticated caller set by requireAuth.
func identity(c *gin.Context) *auth.Identity {
	return c.MustGet(identityKey).(*auth.Identity)
}
