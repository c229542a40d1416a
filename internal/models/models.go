package models

import (
	"errors"
	"time"
)

// Product is a catalog entry owned by the upstream store API.
type Product struct {
	ID          string  `json:"_id"`
	SKU         string  `json:"sku,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty"`
}

// Validate rejects records the upstream should never send.
func (p *Product) Validate() error {
	if p.ID == "" {
		return errors.New("product missing id")
	}
	if p.Name == "" {
		return errors.New("product missing name")
	}
	if p.Price < 0 {
		return errors.New("product price is negative")
	}
	if p.Stock < 0 {
		return errors.New("product stock is negative")
	}
	return nil
}

// OrderItem is a single line of an order as stored upstream.
type OrderItem struct {
	ProductID   string  `json:"productId,omitempty"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is an order record owned by the upstream store API.
type Order struct {
	ID             string      `json:"_id"`
	OrderNumber    string      `json:"orderNumber"`
	CustomerName   string      `json:"customerName"`
	CustomerPhone  string      `json:"customerPhone,omitempty"`
	CustomerEmail  string      `json:"customerEmail,omitempty"`
	Items          []OrderItem `json:"items"`
	Total          float64     `json:"total"`
	Status         string      `json:"status"`
	PaymentMethod  string      `json:"paymentMethod,omitempty"`
	PaymentStatus  string      `json:"paymentStatus,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	IsOfflineOrder bool        `json:"isOfflineOrder"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Payment methods accepted at the point of sale
const (
	PaymentMethodCash         = "cash"
	PaymentMethodUPI          = "upi"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
)

// ValidOrderStatus reports whether s is a status the upstream accepts.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a payment method the upstream accepts.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodBankTransfer, PaymentMethodCard:
		return true
	}
	return false
}

// Validate rejects order records with missing identity or impossible values.
func (o *Order) Validate() error {
	if o.ID == "" {
		return errors.New("order missing id")
	}
	if o.OrderNumber == "" {
		return errors.New("order missing order number")
	}
	if !ValidOrderStatus(o.Status) {
		return errors.New("order has unknown status")
	}
	if o.Total < 0 {
		return errors.New("order total is negative")
	}
	return nil
}

// Review is a customer review owned by the upstream store API.
type Review struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsApproved bool      `json:"isApproved"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate rejects review records with missing identity or an out-of-range rating.
func (r *Review) Validate() error {
	if r.ID == "" {
		return errors.New("review missing id")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return errors.New("review rating out of range")
	}
	return nil
}

// BlogPost is a blog article owned by the upstream store API.
type BlogPost struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content,omitempty"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Author      string    `json:"author"`
	Image       string    `json:"image,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Validate rejects posts that cannot be rendered or linked.
func (b *BlogPost) Validate() error {
	if b.ID == "" {
		return errors.New("blog post missing id")
	}
	if b.Slug == "" {
		return errors.New("blog post missing slug")
	}
	if b.Title == "" {
		return errors.New("blog post missing title")
	}
	return nil
}

// User is the authenticated admin identity returned by the upstream on login.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// DashboardStats are the pre-aggregated figures served by the upstream.
type DashboardStats struct {
	TotalUsers       int     `json:"totalUsers"`
	TotalProducts    int     `json:"totalProducts"`
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalOrders      int     `json:"totalOrders"`
	TodayOrders      int     `json:"todayOrders"`
	ThisMonthRevenue float64 `json:"thisMonthRevenue"`
}
