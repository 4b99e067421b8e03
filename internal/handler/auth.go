package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orderkaro/orderkaro/internal/domain/auth"
	"github.com/orderkaro/orderkaro/internal/domain/user"
)

type userView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func toUserView(u *user.User) userView {
	v := userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if !u.UpdatedAt.Equal(u.CreatedAt) {
		v.UpdatedAt = u.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}

// Register creates an account and returns it with a fresh token.
func (h *Handler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := h.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "User registered successfully",
		"user":    toUserView(u),
		"token":   token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and returns the account with a fresh token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(c, http.StatusBadRequest, "Please provide email and password")
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := h.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Login successful",
		"user":    toUserView(u),
		"token":   token,
	})
}

// Logout acknowledges the request. Tokens are stateless, so the client
// discards its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

// AuthStatus validates the caller's token and echoes the account and token
// back. Unlike the protected group, the route itself is public so clients
// can probe a stored token.
func (h *Handler) AuthStatus(c *gin.Context) {
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
	u, err := h.users.Get(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Authenticated",
		"user":    toUserView(u),
		"token":   token,
	})
}
