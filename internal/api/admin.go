package api

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/models"
	"storefront-gateway/internal/report"
	"storefront-gateway/internal/search"
	"storefront-gateway/internal/util"
)

// dashboard fetches stats, recent orders and low-stock products in parallel.
// A failed section is reported by name instead of failing the whole page.
func (h *Handler) dashboard(c *gin.Context) {
	api := h.authedUpstream(c)
	ctx := c.Request.Context()

	var (
		stats      *models.DashboardStats
		recent     []models.Order
		lowStock   []models.Product
		mu         sync.Mutex
		wg         sync.WaitGroup
		sectionErr = map[string]string{}
	)

	fail := func(section string, err error) {
		mu.Lock()
		sectionErr[section] = err.Error()
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		s, err := api.DashboardStats(ctx)
		if err != nil {
			fail("stats", err)
			return
		}
		stats = s
	}()
	go func() {
		defer wg.Done()
		orders, err := api.RecentOrders(ctx)
		if err != nil {
			fail("recentOrders", err)
			return
		}
		recent = orders
	}()
	go func() {
		defer wg.Done()
		products, err := api.LowStockProducts(ctx)
		if err != nil {
			fail("lowStock", err)
			return
		}
		lowStock = products
	}()
	wg.Wait()

	if len(sectionErr) == 3 {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Dashboard unavailable",
			"errors": sectionErr,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"recentOrders": recent,
		"lowStock":     lowStock,
		"errors":       sectionErr,
	})
}

// orderViewFilter reads the shared order list filters from the query string.
func orderViewFilter(c *gin.Context) report.ViewFilter {
	dateFilter := report.DateFilter(c.DefaultQuery("date", string(report.DateAll)))
	if !dateFilter.Valid() {
		dateFilter = report.DateAll
	}
	return report.ViewFilter{
		Query:  c.Query("search"),
		Status: c.DefaultQuery("status", "all"),
		Date:   dateFilter,
	}
}

// listOrders serves the order management table.
func (h *Handler) listOrders(c *gin.Context) {
	api := h.authedUpstream(c)

	orders, err := api.Orders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := report.FilterOrders(orders, orderViewFilter(c), time.Now())
	c.JSON(http.StatusOK, gin.H{
		"orders": filtered,
		"total":  len(filtered),
	})
}

// updateOrderStatus moves an order to a new status.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	api := h.authedUpstream(c)
	if err := api.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated"})
}

// adminReviews serves the moderation table with text search and an
// approval-state filter, plus the summary counters the page shows.
func (h *Handler) adminReviews(c *gin.Context) {
	api := h.authedUpstream(c)

	reviews, err := api.AdminReviews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var pending, approved int
	var ratingSum int
	for _, r := range reviews {
		if r.IsActive && r.IsApproved {
			approved++
		}
		if r.IsActive && !r.IsApproved {
			pending++
		}
		ratingSum += r.Rating
	}
	var averageRating float64
	if len(reviews) > 0 {
		averageRating = float64(ratingSum) / float64(len(reviews))
	}

	filtered := search.Filter(reviews, c.Query("search"), func(r models.Review) []string {
		return []string{r.Name, r.Title, r.Content}
	})

	switch c.DefaultQuery("status", "all") {
	case "pending":
		filtered = keepReviews(filtered, func(r models.Review) bool { return r.IsActive && !r.IsApproved })
	case "approved":
		filtered = keepReviews(filtered, func(r models.Review) bool { return r.IsActive && r.IsApproved })
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":       filtered,
		"pending":       pending,
		"approved":      approved,
		"averageRating": averageRating,
	})
}

func keepReviews(reviews []models.Review, keep func(models.Review) bool) []models.Review {
	kept := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

// approveReview marks a review as approved.
func (h *Handler) approveReview(c *gin.Context) {
	api := h.authedUpstream(c)
	if err := api.SetReviewApproval(c.Request.Context(), c.Param("id"), true); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review approved"})
}

// rejectReview marks a review as not approved.
func (h *Handler) rejectReview(c *gin.Context) {
	api := h.authedUpstream(c)
	if err := api.SetReviewApproval(c.Request.Context(), c.Param("id"), false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review rejected"})
}

// deleteReview permanently removes a review.
func (h *Handler) deleteReview(c *gin.Context) {
	api := h.authedUpstream(c)
	if err := api.DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// salesReport serves the sales screen: the filtered order rows plus the
// aggregated snapshot derived from them.
func (h *Handler) salesReport(c *gin.Context) {
	api := h.authedUpstream(c)

	orders, err := api.Orders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	view := report.FilterOrders(orders, orderViewFilter(c), now)
	snapshot := report.Aggregate(view, orders, now)

	c.JSON(http.StatusOK, gin.H{
		"snapshot": snapshot,
		"orders":   view,
		"total":    len(view),
	})
}

// exportSales streams the currently filtered order view as a CSV attachment.
func (h *Handler) exportSales(c *gin.Context) {
	api := h.authedUpstream(c)

	orders, err := api.Orders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	view := report.FilterOrders(orders, orderViewFilter(c), now)

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, view); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	util.SalesExportsTotal.Inc()
	c.Header("Content-Disposition", `attachment; filename="`+report.CSVFilename(now)+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// recentSearches returns the caller's saved search history.
func (h *Handler) recentSearches(c *gin.Context) {
	sess := currentSession(c)
	recent, err := h.history.Recent(c.Request.Context(), sess.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recent searches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": recent})
}

// recordSearch saves a query to the caller's search history.
func (h *Handler) recordSearch(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sess := currentSession(c)
	recent, err := h.history.Record(c.Request.Context(), sess.ID, req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save search"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": recent})
}

// clearSearches empties the caller's search history.
func (h *Handler) clearSearches(c *gin.Context) {
	sess := currentSession(c)
	if err := h.history.Clear(c.Request.Context(), sess.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear searches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": []string{}})
}
