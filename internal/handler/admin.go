package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/repository"
)

// AdminHandler serves the admin-only listings. Route registration is
// responsible for putting these behind the admin role gate.
type AdminHandler interface {
	ListUsers(c *gin.Context)
	ListOrders(c *gin.Context)
}

type adminHandler struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	logger *zap.Logger
}

func NewAdminHandler(users repository.UserRepository, orders repository.OrderRepository, logger *zap.Logger) AdminHandler {
	return &adminHandler{users: users, orders: orders, logger: logger}
}

// ListUsers handles GET /api/admin/users.
func (h *adminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.GetAllUsers()
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// ListOrders handles GET /api/admin/orders with user info joined in.
func (h *adminHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.GetAllOrdersWithUsers()
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
