package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cardcms/internal/service"

	"github.com/gin-gonic/gin"
)

// userContextKey holds the authenticated *models.User in the Gin context.
const userContextKey = "user"

// authMiddleware enforces bearer authentication on every card operation.
// Verification is a mandatory precondition: the store is never touched
// for a request that fails here.
func (h *Handler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	user, err := h.services.VerifyToken(c.Request.Context(), parts[1])
	if err != nil {
		msg := "invalid or expired token"
		if errors.Is(err, service.ErrUnknownUser) {
			msg = "user not found"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	c.Set(userContextKey, user)
	c.Next()
}
