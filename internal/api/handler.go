package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"topup-service/internal/catalog"
	"topup-service/internal/checkout"
	"topup-service/internal/models"
	"topup-service/internal/pricing"
	"topup-service/internal/service"
	"topup-service/internal/store"
	"topup-service/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService *service.OrderService
	adminService *service.AdminService
	catalog      *catalog.Catalog
	pricing      *pricing.Engine
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	adminService *service.AdminService,
	cat *catalog.Catalog,
	engine *pricing.Engine,
) *Handler {
	return &Handler{
		orderService: orderService,
		adminService: adminService,
		catalog:      cat,
		pricing:      engine,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine, allowedOrigins []string) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(corsMiddleware(allowedOrigins))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/services", h.listServices)
		v1.GET("/services/categories", h.listCategories)
		v1.POST("/coupons/validate", h.validateCoupon)
		v1.POST("/orders", h.submitOrder)
		v1.GET("/orders/:id", h.getOrder)

		// admin auth middleware attaches here when enabled
		admin := v1.Group("/admin")
		{
			admin.GET("/orders", h.listOrders)
			admin.GET("/orders/summary", h.orderSummary)
			admin.PATCH("/orders/:id/status", h.updateOrderStatus)
		}
	}
}

// corsMiddleware allows the storefront origin set. Preflight requests are
// answered with an empty 200.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:              []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}

	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}

	return cors.New(config)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listServices returns the full catalog
func (h *Handler) listServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services": h.catalog.Services(),
	})
}

// listCategories returns the derived category labels
func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.catalog.Categories(),
	})
}

type validateCouponRequest struct {
	Code      string `json:"code" binding:"required"`
	ServiceID string `json:"service_id" binding:"required"`
}

// validateCoupon prices a catalog service against a coupon code
func (h *Handler) validateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	svc, ok := h.catalog.ByID(req.ServiceID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Service not found",
		})
		return
	}

	quote := h.pricing.Quote(c.Request.Context(), svc, req.Code)
	if !quote.CouponValid {
		c.JSON(http.StatusOK, gin.H{
			"valid":   false,
			"message": "The coupon code you entered is not valid.",
			"quote":   quote,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"message": "Coupon applied",
		"quote":   quote,
	})
}

// submitOrder handles order submission
func (h *Handler) submitOrder(c *gin.Context) {
	var req service.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orderService.Submit(c.Request.Context(), &req)
	if err != nil {
		if checkout.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to process order",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// listOrders returns all orders for the admin console, most recent first
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.adminService.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// orderSummary returns aggregate counts and completed revenue
func (h *Handler) orderSummary(c *gin.Context) {
	summary, err := h.adminService.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load summary",
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// updateOrderStatus performs a guarded status transition
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	order, err := h.adminService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, store.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
