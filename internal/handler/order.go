package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/notifier"
	"storefront/internal/repository"
)

type OrderHandler interface {
	CreateOrder(c *gin.Context)
	ListMyOrders(c *gin.Context)
}

type orderHandler struct {
	orders   repository.OrderRepository
	notifier *notifier.Bot
	logger   *zap.Logger
}

// NewOrderHandler creates the order endpoints. The notifier may be nil when
// Telegram notifications are disabled.
func NewOrderHandler(orders repository.OrderRepository, bot *notifier.Bot, logger *zap.Logger) OrderHandler {
	return &orderHandler{orders: orders, notifier: bot, logger: logger}
}

type CreateOrderRequest struct {
	Items json.RawMessage `json:"items" binding:"required"`
	Total float64         `json:"total" binding:"required,gt=0"`
}

// CreateOrder handles POST /api/orders. The order is attributed to the
// authenticated principal; clients cannot place orders for other users.
func (h *orderHandler) CreateOrder(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid token"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	order := &models.Order{
		Reference: uuid.NewString(),
		UserID:    principal.ID,
		Items:     req.Items,
		Total:     req.Total,
		Status:    models.OrderStatusPending,
	}
	if err := h.orders.CreateOrder(order); err != nil {
		h.logger.Error("Failed to create order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	metrics.OrdersCreatedTotal.Inc()
	h.notifier.NotifyOrderPlaced(order, principal.Email)

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// ListMyOrders handles GET /api/orders/user, newest first.
func (h *orderHandler) ListMyOrders(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid token"})
		return
	}

	orders, err := h.orders.GetOrdersByUserID(principal.ID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Int64("user_id", principal.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
