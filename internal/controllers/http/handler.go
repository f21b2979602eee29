package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"coffee-orders/internal/domain"
	"coffee-orders/internal/infra"
	"coffee-orders/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

const statusCacheTTL = 5 * time.Second

var menu = []MenuItem{
	{ID: "coffee-espresso", Name: "Espresso", Price: 3.0},
	{ID: "coffee-latte", Name: "Latte", Price: 4.5},
	{ID: "drink-iced-tea", Name: "Iced Tea", Price: 3.5},
	{ID: "food-croissant", Name: "Croissant", Price: 4.0},
}

type Handler struct {
	service *services.OrderService
	push    infra.PushSender
	rdb     *redis.Client
}

func NewHandler(s *services.OrderService, push infra.PushSender, rdb *redis.Client) *Handler {
	return &Handler{service: s, push: push, rdb: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/menu", h.Menu)
	r.POST("/orders", h.CreateOrder)
	r.POST("/order", h.CreateOrder) // alias kept for older mobile builds
	r.GET("/orders/:id", h.GetOrder)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.GET("/status/:orderId", h.GetStatus)
	r.GET("/status", h.GetStatusByQuery)
	r.POST("/webhooks/orders", h.OrdersWebhook)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Menu(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": menu})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Items are required."})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), req.Items, req.PushToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidItems) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Items are required."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order."})
		return
	}

	c.JSON(http.StatusCreated, CreateOrderResponse{
		OrderID: order.ID,
		Total:   order.Total,
		Status:  order.Status,
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required."})
		return
	}

	order, err := h.service.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order."})
		return
	}

	c.JSON(http.StatusOK, OrderResponse{
		ID:        order.ID,
		Items:     order.Items,
		Total:     order.Total,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	})
}

// UpdateOrderStatus is the admin action behind the kanban board: both the
// per-column button and a drag to an arbitrary column end up here.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required."})
		return
	}

	status, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status."})
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order."})
		return
	}

	h.invalidateStatusCache(id)

	c.JSON(http.StatusOK, OrderResponse{
		ID:        order.ID,
		Items:     order.Items,
		Total:     order.Total,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	})
}

func (h *Handler) GetStatus(c *gin.Context) {
	h.respondStatus(c, c.Param("orderId"))
}

func (h *Handler) GetStatusByQuery(c *gin.Context) {
	h.respondStatus(c, c.Query("orderId"))
}

func (h *Handler) respondStatus(c *gin.Context, orderID string) {
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required."})
		return
	}

	cacheKey := "orders:status:" + orderID
	if h.rdb != nil {
		if cached, err := h.rdb.Get(context.Background(), cacheKey).Result(); err == nil {
			var resp StatusResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	order, err := h.service.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order."})
		return
	}

	resp := StatusResponse{
		OrderID: order.ID,
		Status:  order.Status,
		Total:   order.Total,
	}
	if h.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			h.rdb.Set(context.Background(), cacheKey, data, statusCacheTTL)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) invalidateStatusCache(orderID string) {
	if h.rdb != nil {
		h.rdb.Del(context.Background(), "orders:status:"+orderID)
	}
}

// OrdersWebhook is the out-of-process push trigger: the store posts every
// orders-table update here, and a push goes out only for a real transition
// to ready on an order that carries a token. Every other case is a success
// response with a skip reason, so the store never retries no-ops.
func (h *Handler) OrdersWebhook(c *gin.Context) {
	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if payload.Type != string(domain.ChangeUpdate) || payload.Table != domain.OrdersTable {
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": "not orders UPDATE"})
		return
	}

	record := payload.Record
	oldRecord := payload.OldRecord
	if record == nil || record.Status == nil || *record.Status == "" || oldRecord == nil || oldRecord.Status == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": "no status change"})
		return
	}

	if *oldRecord.Status == *record.Status {
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": "status unchanged"})
		return
	}

	if domain.NormalizeStatus(domain.OrderStatus(*record.Status)) != domain.StatusReady {
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": "push only when ready"})
		return
	}

	token := strings.TrimSpace(record.PushToken)
	if token == "" {
		token = strings.TrimSpace(oldRecord.PushToken)
	}
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": "no push_token"})
		return
	}

	msg := infra.PushMessage{
		To:    token,
		Title: "Order ready",
		Body:  "Your order is ready for pickup.",
		Data: map[string]any{
			"orderId": record.ID,
			"status":  *record.Status,
		},
	}
	if err := h.push.SendPush(c.Request.Context(), msg); err != nil {
		// Fire and forget relative to the order: the status change already
		// committed and stays committed.
		log.Printf("Push delivery for order %s failed: %v", record.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Push delivery failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
