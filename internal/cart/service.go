package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-gateway/internal/kv"
	"storefront-gateway/internal/models"
	"storefront-gateway/internal/search"
	"storefront-gateway/internal/upstream"
	"storefront-gateway/internal/util"
)

var (
	// ErrCartNotFound is returned when no cart session exists for an ID.
	ErrCartNotFound = errors.New("cart session not found")

	// ErrProductNotFound is returned when an added product is not in the
	// current catalog (sold out or removed since the catalog was fetched).
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrEmptyCart rejects submission of a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMissingCustomer rejects submission without a customer name and phone.
	ErrMissingCustomer = errors.New("customer name and phone are required")
)

// CustomerInfo identifies the in-store customer an order is entered for.
type CustomerInfo struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// Service manages point-of-sale cart sessions. Carts live in the kv store for
// the length of an order-entry session; products and the submitted order live
// upstream.
type Service struct {
	store  kv.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a cart service with the given cart session lifetime.
func NewService(store kv.Store, ttl time.Duration) *Service {
	return &Service{
		store:  store,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

func cartKey(id string) string {
	return "cart:" + id
}

// Create starts a new, empty cart session.
func (s *Service) Create(ctx context.Context) (*Cart, error) {
	c := New(uuid.New().String())
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get loads a cart session by ID.
func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	var c Cart
	err := s.store.Get(ctx, cartKey(id), &c)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &c, nil
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	if err := s.store.Set(ctx, cartKey(c.ID), c, s.ttl); err != nil {
		return fmt.Errorf("failed to store cart: %w", err)
	}
	return nil
}

// Catalog fetches the sellable catalog: in-stock products, optionally
// narrowed by a name/SKU substring match.
func (s *Service) Catalog(ctx context.Context, api *upstream.Client, query string) ([]models.Product, error) {
	products, err := api.Products(ctx)
	if err != nil {
		return nil, err
	}

	inStock := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Stock > 0 {
			inStock = append(inStock, p)
		}
	}

	return search.Filter(inStock, query, func(p models.Product) []string {
		return []string{p.Name, p.SKU}
	}), nil
}

// AddItem adds one unit of a product to the cart, snapshotting the product's
// current stock as the line's ceiling.
func (s *Service) AddItem(ctx context.Context, api *upstream.Client, cartID, productID string) (*Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	products, err := api.Products(ctx)
	if err != nil {
		return nil, err
	}

	var product *models.Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	if product == nil || product.Stock <= 0 {
		return nil, ErrProductNotFound
	}

	if err := c.AddLine(*product); err != nil {
		if errors.Is(err, ErrStockExceeded) {
			util.CartStockRejectionsTotal.Inc()
		}
		return nil, err
	}

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetQuantity sets a line's quantity; zero or less removes the line.
func (s *Service) SetQuantity(ctx context.Context, cartID, productID string, quantity int) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := c.SetQuantity(productID, quantity); err != nil {
		if errors.Is(err, ErrStockExceeded) {
			util.CartStockRejectionsTotal.Inc()
		}
		return nil, err
	}

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem removes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	c.RemoveLine(productID)

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the cart but keeps the session alive.
func (s *Service) Clear(ctx context.Context, cartID string) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	c.Clear()

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Submit sends the cart upstream as a completed point-of-sale order. On
// success the cart is cleared; on any failure the cart is left intact and the
// upstream's error message is surfaced unchanged, since a stock rejection can
// still happen server-side regardless of the local ceilings.
func (s *Service) Submit(ctx context.Context, api *upstream.Client, cartID string, customer CustomerInfo) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Submit")
	defer span.End()

	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if len(c.Lines) == 0 {
		util.OfflineOrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}
	if customer.Name == "" || customer.Phone == "" {
		util.OfflineOrdersFailedTotal.WithLabelValues("missing_customer").Inc()
		return nil, ErrMissingCustomer
	}

	paymentMethod := customer.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}
	if !models.ValidPaymentMethod(paymentMethod) {
		util.OfflineOrdersFailedTotal.WithLabelValues("invalid_payment_method").Inc()
		return nil, fmt.Errorf("unknown payment method %q", paymentMethod)
	}

	req := &upstream.OfflineOrderRequest{
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		CustomerEmail: customer.Email,
		Items:         c.Items(),
		Total:         c.Total(),
		PaymentMethod: paymentMethod,
		Status:        models.OrderStatusCompleted,
	}

	order, err := api.CreateOfflineOrder(ctx, req)
	if err != nil {
		util.OfflineOrdersFailedTotal.WithLabelValues("upstream_rejected").Inc()
		return nil, err
	}

	c.Clear()
	if err := s.save(ctx, c); err != nil {
		// The order exists upstream; losing the clear only risks a stale
		// cart session, so log and return the order anyway.
		s.logger.Error("Failed to clear cart after submission",
			zap.String("cart_id", cartID),
			zap.Error(err))
	}

	util.OfflineOrdersCreatedTotal.Inc()
	s.logger.Info("Offline order created",
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", req.Total),
		zap.Int("lines", len(req.Items)))
	return order, nil
}
