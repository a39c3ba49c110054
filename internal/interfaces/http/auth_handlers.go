package http

import (
	"github.com/gin-gonic/gin"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token    string      `json:"token"`
	Employee interface{} `json:"employee"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "email and password are required")
		return
	}

	token, emp, err := h.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// never echo the password hash
	emp.PasswordHash = ""
	h.ok(c, LoginResponse{Token: token, Employee: emp})
}

// Logout handles POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.services.Auth.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, gin.H{"logged_out": true})
}
