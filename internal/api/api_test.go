package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-gateway/internal/calc"
	"storefront-gateway/internal/cart"
	"storefront-gateway/internal/kv"
	"storefront-gateway/internal/search"
	"storefront-gateway/internal/session"
	"storefront-gateway/internal/upstream"
)

// fakeUpstream is a minimal stand-in for the remote store API. A zero status
// field means the endpoint answers 200.
type fakeUpstream struct {
	loginOK      bool
	ordersStatus int
	ordersBody   string

	statsStatus    int
	recentStatus   int
	lowStockStatus int
}

func respond(w http.ResponseWriter, status int, body string) {
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"upstream section down"}`))
		return
	}
	w.Write([]byte(body))
}

func (f *fakeUpstream) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
			if !f.loginOK {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"Invalid credentials"}`))
				return
			}
			w.Write([]byte(`{"token":"upstream-token","user":{"_id":"u1","name":"Admin","email":"admin@store.test"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/orders":
			status := f.ordersStatus
			if status == 0 {
				status = http.StatusOK
			}
			w.WriteHeader(status)
			w.Write([]byte(f.ordersBody))
		case r.Method == http.MethodGet && r.URL.Path == "/api/dashboard/stats":
			respond(w, f.statsStatus, `{"totalUsers":4,"totalProducts":12,"totalRevenue":5400,"totalOrders":9}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/orders/recent":
			respond(w, f.recentStatus, `[
				{"_id":"o1","orderNumber":"ORD-001","customerName":"Asha Verma","total":100,"status":"completed","createdAt":"2025-03-15T10:00:00Z"}
			]`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/products/low-stock":
			respond(w, f.lowStockStatus, `[
				{"_id":"p1","name":"Steel Pipe","price":120.5,"stock":2}
			]`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/products":
			w.Write([]byte(`[
				{"_id":"p1","name":"Steel Pipe","description":"Galvanized","category":"plumbing","price":120.5,"stock":3},
				{"_id":"p2","name":"Copper Wire","description":"2mm","category":"electrical","price":45,"stock":10}
			]`))
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestRouter(t *testing.T, fake *fakeUpstream) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	store := kv.NewMemoryStore()
	client := upstream.NewClient(srv.URL, 5*time.Second)
	h := NewHandler(
		client,
		session.NewManager(store, time.Hour),
		cart.NewService(store, time.Hour),
		calc.NewSessions(store, time.Hour),
		search.NewHistory(store),
	)

	router := gin.New()
	h.SetupRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@store.test","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRequireSession_MissingToken(t *testing.T) {
	router := newTestRouter(t, &fakeUpstream{})

	for _, path := range []string{
		"/api/v1/admin/dashboard",
		"/api/v1/admin/orders",
		"/api/v1/admin/sales",
	} {
		w := doJSON(router, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "/admin/login", resp["redirect"], path)
	}
}

func TestRequireSession_UnknownToken(t *testing.T) {
	router := newTestRouter(t, &fakeUpstream{})

	w := doJSON(router, http.MethodGet, "/api/v1/admin/orders", "not-a-session", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_FailurePassesUpstreamMessage(t *testing.T) {
	router := newTestRouter(t, &fakeUpstream{loginOK: false})

	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@b.c","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid credentials", resp["error"])
}

func TestLogin_GrantsAdminAccess(t *testing.T) {
	fake := &fakeUpstream{loginOK: true, ordersBody: `[]`}
	router := newTestRouter(t, fake)

	token := loginAs(t, router)

	w := doJSON(router, http.MethodGet, "/api/v1/admin/orders", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpstream401_InvalidatesSession(t *testing.T) {
	fake := &fakeUpstream{loginOK: true, ordersStatus: http.StatusUnauthorized, ordersBody: `{"message":"jwt expired"}`}
	router := newTestRouter(t, fake)

	token := loginAs(t, router)

	// The upstream rejects the bound token; the gateway reports the expiry
	// with a login redirect and tears the session down.
	w := doJSON(router, http.MethodGet, "/api/v1/admin/orders", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/admin/login", resp["redirect"])

	// The session is gone, so the next request never reaches the upstream.
	fake.ordersStatus = http.StatusOK
	fake.ordersBody = `[]`
	w = doJSON(router, http.MethodGet, "/api/v1/admin/orders", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboard_AllSectionsHealthy(t *testing.T) {
	fake := &fakeUpstream{loginOK: true}
	router := newTestRouter(t, fake)
	token := loginAs(t, router)

	w := doJSON(router, http.MethodGet, "/api/v1/admin/dashboard", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats        *struct{ TotalOrders int }     `json:"stats"`
		RecentOrders []struct{ OrderNumber string } `json:"recentOrders"`
		LowStock     []struct{ Name string }        `json:"lowStock"`
		Errors       map[string]string              `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 9, resp.Stats.TotalOrders)
	require.Len(t, resp.RecentOrders, 1)
	require.Len(t, resp.LowStock, 1)
	assert.Empty(t, resp.Errors)
}

func TestDashboard_FailedSectionReportedByName(t *testing.T) {
	fake := &fakeUpstream{loginOK: true, statsStatus: http.StatusInternalServerError}
	router := newTestRouter(t, fake)
	token := loginAs(t, router)

	w := doJSON(router, http.MethodGet, "/api/v1/admin/dashboard", token, "")
	require.Equal(t, http.StatusOK, w.Code, "one dead section does not take down the page")

	var resp struct {
		Stats        *struct{ TotalOrders int }     `json:"stats"`
		RecentOrders []struct{ OrderNumber string } `json:"recentOrders"`
		LowStock     []struct{ Name string }        `json:"lowStock"`
		Errors       map[string]string              `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Nil(t, resp.Stats)
	assert.Contains(t, resp.Errors, "stats")
	assert.NotContains(t, resp.Errors, "recentOrders")
	assert.NotContains(t, resp.Errors, "lowStock")

	require.Len(t, resp.RecentOrders, 1, "surviving sections still render")
	assert.Equal(t, "ORD-001", resp.RecentOrders[0].OrderNumber)
	require.Len(t, resp.LowStock, 1)
	assert.Equal(t, "Steel Pipe", resp.LowStock[0].Name)
}

func TestDashboard_AllSectionsFailing(t *testing.T) {
	fake := &fakeUpstream{
		loginOK:        true,
		statsStatus:    http.StatusInternalServerError,
		recentStatus:   http.StatusInternalServerError,
		lowStockStatus: http.StatusInternalServerError,
	}
	router := newTestRouter(t, fake)
	token := loginAs(t, router)

	w := doJSON(router, http.MethodGet, "/api/v1/admin/dashboard", token, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Errors, 3)
}

func TestLogout_EndsSession(t *testing.T) {
	fake := &fakeUpstream{loginOK: true, ordersBody: `[]`}
	router := newTestRouter(t, fake)

	token := loginAs(t, router)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/logout", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/orders", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLiveSearch_ShortQueryReturnsNothing(t *testing.T) {
	router := newTestRouter(t, &fakeUpstream{})

	var resp struct {
		Products []json.RawMessage `json:"products"`
	}

	for _, q := range []string{"pi", "管材"} {
		w := doJSON(router, http.MethodGet, "/api/v1/storefront/products/live-search?q="+url.QueryEscape(q), "", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Products, "queries under three characters never hit the upstream")
	}
}

func TestLiveSearch_MatchesAcrossFields(t *testing.T) {
	router := newTestRouter(t, &fakeUpstream{})

	w := doJSON(router, http.MethodGet, "/api/v1/storefront/products/live-search?q=electrical", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Copper Wire", resp.Products[0].Name)
}

func TestListProducts_SearchAndCategory(t *testing.T) {
	router := newTestRouter(t, &fakeUpstream{})

	w := doJSON(router, http.MethodGet, "/api/v1/storefront/products?search=pipe", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	w = doJSON(router, http.MethodGet, "/api/v1/storefront/products?category=all", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total, `category "all" disables the filter`)
}

func TestCreateReview_Validation(t *testing.T) {
	router := newTestRouter(t, &fakeUpstream{})

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"rating":5,"title":"Great","content":"Solid"}`},
		{"rating too low", `{"name":"A","rating":0,"title":"Bad","content":"..."}`},
		{"rating too high", `{"name":"A","rating":6,"title":"Bad","content":"..."}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/v1/storefront/reviews", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCalculatorEndpoint(t *testing.T) {
	fake := &fakeUpstream{loginOK: true}
	router := newTestRouter(t, fake)
	token := loginAs(t, router)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/pos/calculator/till-1/keys", token,
		`{"keys":["7","+","3","="]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var state struct {
		Display string `json:"display"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "10", state.Display)

	// State persists across requests within the session.
	w = doJSON(router, http.MethodPost, "/api/v1/admin/pos/calculator/till-1/keys", token,
		`{"keys":["+","5","="]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "15", state.Display)

	w = doJSON(router, http.MethodDelete, "/api/v1/admin/pos/calculator/till-1", token, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCartEndpoints(t *testing.T) {
	fake := &fakeUpstream{loginOK: true}
	router := newTestRouter(t, fake)
	token := loginAs(t, router)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/pos/carts", token, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Cart struct {
			ID string `json:"id"`
		} `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	cartID := created.Cart.ID
	require.NotEmpty(t, cartID)

	w = doJSON(router, http.MethodPost, "/api/v1/admin/pos/carts/"+cartID+"/items", token, `{"productId":"p1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var state struct {
		Total float64 `json:"total"`
		Lines int     `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 1, state.Lines)
	assert.InDelta(t, 120.5, state.Total, 0.0001)

	// Pushing past the stock ceiling is a conflict, not a server error.
	for i := 0; i < 2; i++ {
		w = doJSON(router, http.MethodPost, "/api/v1/admin/pos/carts/"+cartID+"/items", token, `{"productId":"p1"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = doJSON(router, http.MethodPost, "/api/v1/admin/pos/carts/"+cartID+"/items", token, `{"productId":"p1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/pos/carts/no-such-cart", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecentSearches(t *testing.T) {
	fake := &fakeUpstream{loginOK: true}
	router := newTestRouter(t, fake)
	token := loginAs(t, router)

	for _, q := range []string{"pipe", "wire", "pipe"} {
		w := doJSON(router, http.MethodPost, "/api/v1/admin/searches/recent", token, `{"query":"`+q+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/admin/searches/recent", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Searches []string `json:"searches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"pipe", "wire"}, resp.Searches, "repeats move to the front without duplicating")

	w = doJSON(router, http.MethodDelete, "/api/v1/admin/searches/recent", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/searches/recent", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Searches)
}
