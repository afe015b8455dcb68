package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lifelink-api-server/internal/service"
)

// AdminHandler serves the admin's user management endpoints.
type AdminHandler struct {
	Svc *service.AdminService
}

// ListUsers returns every user of the role in the path.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context(), c.Param("role"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "users": users})
}

// BlockUser suspends an account.
func (h *AdminHandler) BlockUser(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.BlockUser(c.Request.Context(), adminID, userID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// UnblockUser reinstates a blocked account.
func (h *AdminHandler) UnblockUser(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.UnblockUser(c.Request.Context(), adminID, userID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DeleteUser removes an account.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteUser(c.Request.Context(), adminID, userID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
