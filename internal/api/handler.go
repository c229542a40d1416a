package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-gateway/internal/calc"
	"storefront-gateway/internal/cart"
	"storefront-gateway/internal/search"
	"storefront-gateway/internal/session"
	"storefront-gateway/internal/upstream"
	"storefront-gateway/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	upstream *upstream.Client
	sessions *session.Manager
	carts    *cart.Service
	calcs    *calc.Sessions
	history  *search.History
}

// NewHandler creates a new HTTP handler
func NewHandler(
	upstreamClient *upstream.Client,
	sessions *session.Manager,
	carts *cart.Service,
	calcs *calc.Sessions,
	history *search.History,
) *Handler {
	return &Handler{
		upstream: upstreamClient,
		sessions: sessions,
		carts:    carts,
		calcs:    calcs,
		history:  history,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	storefront := v1.Group("/storefront")
	{
		storefront.GET("/products", h.listProducts)
		storefront.GET("/products/live-search", h.liveSearchProducts)
		storefront.GET("/blog", h.listBlogPosts)
		storefront.GET("/blog/:slug", h.getBlogPost)
		storefront.GET("/reviews", h.listReviews)
		storefront.POST("/reviews", h.createReview)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.login)
		auth.POST("/register", h.register)
		auth.POST("/logout", h.requireSession, h.logout)
	}

	admin := v1.Group("/admin", h.requireSession)
	{
		admin.GET("/dashboard", h.dashboard)

		admin.GET("/orders", h.listOrders)
		admin.PUT("/orders/:id", h.updateOrderStatus)

		admin.GET("/reviews", h.adminReviews)
		admin.PUT("/reviews/:id/approve", h.approveReview)
		admin.PUT("/reviews/:id/reject", h.rejectReview)
		admin.DELETE("/reviews/:id", h.deleteReview)

		admin.GET("/sales", h.salesReport)
		admin.GET("/sales/export", h.exportSales)

		admin.GET("/searches/recent", h.recentSearches)
		admin.POST("/searches/recent", h.recordSearch)
		admin.DELETE("/searches/recent", h.clearSearches)

		pos := admin.Group("/pos")
		{
			pos.GET("/catalog", h.posCatalog)
			pos.POST("/carts", h.createCart)
			pos.GET("/carts/:id", h.getCart)
			pos.POST("/carts/:id/items", h.addCartItem)
			pos.PUT("/carts/:id/items/:productID", h.setCartQuantity)
			pos.DELETE("/carts/:id/items/:productID", h.removeCartItem)
			pos.DELETE("/carts/:id", h.clearCart)
			pos.POST("/carts/:id/submit", h.submitCart)

			pos.POST("/calculator/:id/keys", h.calculatorKeys)
			pos.DELETE("/calculator/:id", h.calculatorReset)
		}
	}
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
