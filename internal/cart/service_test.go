package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-gateway/internal/kv"
	"storefront-gateway/internal/upstream"
)

// fakeStore serves a fixed catalog and records offline order submissions.
type fakeStore struct {
	catalog     string
	rejectOrder bool
	submissions int
}

func (f *fakeStore) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/products":
			w.Write([]byte(f.catalog))
		case r.Method == http.MethodPost && r.URL.Path == "/api/orders/offline":
			f.submissions++
			if f.rejectOrder {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"Insufficient stock for Steel Pipe"}`))
				return
			}
			var req upstream.OfflineOrderRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"_id":            "o1",
				"orderNumber":    "ORD-100",
				"customerName":   req.CustomerName,
				"items":          req.Items,
				"total":          req.Total,
				"status":         req.Status,
				"paymentMethod":  req.PaymentMethod,
				"createdAt":      time.Now().UTC().Format(time.RFC3339),
				"isOfflineOrder": true,
			})
		default:
			http.NotFound(w, r)
		}
	}
}

const testCatalog = `[
	{"_id":"p1","sku":"SP-10","name":"Steel Pipe","price":120.5,"stock":2},
	{"_id":"p2","sku":"CW-20","name":"Copper Wire","price":45,"stock":10},
	{"_id":"p3","sku":"CH-30","name":"Claw Hammer","price":30,"stock":0}
]`

func newTestService(t *testing.T, fake *fakeStore) (*Service, *upstream.Client) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	svc := NewService(kv.NewMemoryStore(), time.Hour)
	return svc, upstream.NewClient(srv.URL, 5*time.Second)
}

func TestService_Catalog(t *testing.T) {
	svc, api := newTestService(t, &fakeStore{catalog: testCatalog})

	products, err := svc.Catalog(context.Background(), api, "")
	require.NoError(t, err)
	require.Len(t, products, 2, "sold-out products are not sellable")

	bySKU, err := svc.Catalog(context.Background(), api, "cw-20")
	require.NoError(t, err)
	require.Len(t, bySKU, 1)
	assert.Equal(t, "Copper Wire", bySKU[0].Name)
}

func TestService_AddItem(t *testing.T) {
	svc, api := newTestService(t, &fakeStore{catalog: testCatalog})
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)

	c, err = svc.AddItem(ctx, api, c.ID, "p1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, 2, c.Lines[0].MaxQuantity, "ceiling snapshots the stock at fetch time")

	// Second add increments; third hits the ceiling.
	c, err = svc.AddItem(ctx, api, c.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Lines[0].Quantity)

	_, err = svc.AddItem(ctx, api, c.ID, "p1")
	assert.ErrorIs(t, err, ErrStockExceeded)

	loaded, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Lines[0].Quantity, "rejected add leaves the cart unchanged")
}

func TestService_AddItemUnknownOrSoldOut(t *testing.T) {
	svc, api := newTestService(t, &fakeStore{catalog: testCatalog})
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, api, c.ID, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.AddItem(ctx, api, c.ID, "p3")
	assert.ErrorIs(t, err, ErrProductNotFound, "zero-stock product is not addable")
}

func TestService_GetMissingCart(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{catalog: testCatalog})

	_, err := svc.Get(context.Background(), "no-such-cart")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestService_SubmitSuccessClearsCart(t *testing.T) {
	fake := &fakeStore{catalog: testCatalog}
	svc, api := newTestService(t, fake)
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, api, c.ID, "p1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, api, c.ID, "p2")
	require.NoError(t, err)

	order, err := svc.Submit(ctx, api, c.ID, CustomerInfo{
		Name:  "Asha Verma",
		Phone: "9800000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-100", order.OrderNumber)
	assert.Equal(t, "completed", order.Status)
	assert.Equal(t, "cash", order.PaymentMethod, "payment method defaults to cash")
	assert.InDelta(t, 165.5, order.Total, 0.0001)

	loaded, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Lines, "successful submission empties the cart")
}

func TestService_SubmitUpstreamRejectionKeepsCart(t *testing.T) {
	fake := &fakeStore{catalog: testCatalog, rejectOrder: true}
	svc, api := newTestService(t, fake)
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, api, c.ID, "p1")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, api, c.ID, CustomerInfo{Name: "Asha Verma", Phone: "9800000000"})
	require.Error(t, err)

	var apiErr *upstream.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Insufficient stock for Steel Pipe", apiErr.Message)

	loaded, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Lines, 1, "rejected submission leaves the cart intact")
}

func TestService_SubmitValidation(t *testing.T) {
	fake := &fakeStore{catalog: testCatalog}
	svc, api := newTestService(t, fake)
	ctx := context.Background()

	empty, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, api, empty.ID, CustomerInfo{Name: "Asha Verma", Phone: "9800000000"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	c, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, api, c.ID, "p2")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, api, c.ID, CustomerInfo{Phone: "9800000000"})
	assert.ErrorIs(t, err, ErrMissingCustomer)

	_, err = svc.Submit(ctx, api, c.ID, CustomerInfo{Name: "Asha Verma"})
	assert.ErrorIs(t, err, ErrMissingCustomer)

	_, err = svc.Submit(ctx, api, c.ID, CustomerInfo{
		Name: "Asha Verma", Phone: "9800000000", PaymentMethod: "barter",
	})
	assert.Error(t, err)

	assert.Zero(t, fake.submissions, "nothing invalid reaches the upstream")
}
