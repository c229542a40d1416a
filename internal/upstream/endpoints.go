package upstream

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront-gateway/internal/models"
)

// Products retrieves the full catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products", nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidList[models.Product](c, raw, "product"), nil
}

// LowStockProducts retrieves products the upstream flags as low on stock.
func (c *Client) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products/low-stock", nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidList[models.Product](c, raw, "product"), nil
}

// BlogPosts retrieves all published blog posts.
func (c *Client) BlogPosts(ctx context.Context) ([]models.BlogPost, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/blog", nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidList[models.BlogPost](c, raw, "blog_post"), nil
}

// BlogPostBySlug retrieves a single blog post.
func (c *Client) BlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := c.do(ctx, http.MethodGet, "/blog/"+slug, nil, &post); err != nil {
		return nil, err
	}
	if err := post.Validate(); err != nil {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: err.Error()}
	}
	return &post, nil
}

// Reviews retrieves the approved, public review list.
func (c *Client) Reviews(ctx context.Context) ([]models.Review, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/reviews", nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidList[models.Review](c, raw, "review"), nil
}

// AdminReviews retrieves all reviews including unapproved ones.
func (c *Client) AdminReviews(ctx context.Context) ([]models.Review, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/reviews/admin", nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidList[models.Review](c, raw, "review"), nil
}

// CreateReviewRequest is a review submission from the storefront.
type CreateReviewRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateReview submits a customer review for moderation.
func (c *Client) CreateReview(ctx context.Context, req *CreateReviewRequest) error {
	return c.do(ctx, http.MethodPost, "/reviews", req, nil)
}

// SetReviewApproval approves or rejects a review.
func (c *Client) SetReviewApproval(ctx context.Context, reviewID string, approved bool) error {
	body := map[string]bool{"isApproved": approved}
	return c.do(ctx, http.MethodPut, "/reviews/"+reviewID+"/approve", body, nil)
}

// DeleteReview permanently removes a review.
func (c *Client) DeleteReview(ctx context.Context, reviewID string) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+reviewID, nil, nil)
}

// Orders retrieves all orders for reporting and management.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidList[models.Order](c, raw, "order"), nil
}

// RecentOrders retrieves the most recent orders for the dashboard.
func (c *Client) RecentOrders(ctx context.Context) ([]models.Order, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/orders/recent", nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidList[models.Order](c, raw, "order"), nil
}

// OfflineOrderRequest is a point-of-sale order submission. Status is always
// "completed": the customer pays in store before the order is entered.
type OfflineOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	Items         []models.OrderItem `json:"items"`
	Total         float64            `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	Status        string             `json:"status"`
}

// CreateOfflineOrder submits a point-of-sale order. The upstream performs the
// authoritative stock check and decrement; a rejection comes back as an
// *APIError carrying the upstream's message.
func (c *Client) CreateOfflineOrder(ctx context.Context, req *OfflineOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/orders/offline", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order to a new status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPut, "/orders/"+orderID, body, nil)
}

// LoginRequest are admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the upstream's answer to a successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login authenticates against the upstream and returns its bearer token.
func (c *Client) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterRequest is a new-account submission.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account upstream.
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DashboardStats retrieves the upstream's pre-aggregated dashboard figures.
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
