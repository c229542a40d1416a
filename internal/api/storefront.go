package api

import (
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/models"
	"storefront-gateway/internal/search"
	"storefront-gateway/internal/upstream"
)

// listProducts serves the catalog page: text search over name and
// description combined with a category equality filter.
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.upstream.Products(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := search.Filter(products, c.Query("search"), func(p models.Product) []string {
		return []string{p.Name, p.Description}
	})
	filtered = search.ByCategory(filtered, c.Query("category"), func(p models.Product) string {
		return p.Category
	})

	c.JSON(http.StatusOK, gin.H{
		"products": filtered,
		"total":    len(filtered),
	})
}

// liveSearchProducts serves the type-ahead widget: short queries return
// nothing, matches are capped.
func (h *Handler) liveSearchProducts(c *gin.Context) {
	query := c.Query("q")
	if utf8.RuneCountInString(query) < search.LiveSearchMinLength {
		c.JSON(http.StatusOK, gin.H{"products": []models.Product{}})
		return
	}

	products, err := h.upstream.Products(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	matched := search.LiveSearch(products, query, func(p models.Product) []string {
		return []string{p.Name, p.Description, p.Category}
	})

	c.JSON(http.StatusOK, gin.H{"products": matched})
}

// listBlogPosts serves the blog index with text search over title, excerpt
// and tags plus a category filter.
func (h *Handler) listBlogPosts(c *gin.Context) {
	posts, err := h.upstream.BlogPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := search.Filter(posts, c.Query("search"), func(p models.BlogPost) []string {
		fields := []string{p.Title, p.Excerpt}
		return append(fields, p.Tags...)
	})
	filtered = search.ByCategory(filtered, c.Query("category"), func(p models.BlogPost) string {
		return p.Category
	})

	c.JSON(http.StatusOK, gin.H{
		"posts": filtered,
		"total": len(filtered),
	})
}

// getBlogPost serves a single post plus up to three related posts from the
// same category.
func (h *Handler) getBlogPost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.upstream.BlogPostBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}

	related := []models.BlogPost{}
	if all, err := h.upstream.BlogPosts(c.Request.Context()); err == nil {
		for _, p := range all {
			if p.Slug != post.Slug && p.Category == post.Category {
				related = append(related, p)
			}
			if len(related) == 3 {
				break
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"post":    post,
		"related": related,
	})
}

// listReviews serves the approved public reviews.
func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.upstream.Reviews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// createReview validates and forwards a customer review submission.
func (h *Handler) createReview(c *gin.Context) {
	var req upstream.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.Name == "" || req.Title == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, title and content are required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	if err := h.upstream.CreateReview(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted for approval"})
}
