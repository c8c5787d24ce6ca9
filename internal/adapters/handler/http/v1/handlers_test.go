package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mygeone2/quotes-fake-api/internal/adapters/repository/sqlstore"
	"github.com/mygeone2/quotes-fake-api/internal/config"
	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/core/service/health"
	"github.com/mygeone2/quotes-fake-api/internal/core/service/orders"
	"github.com/mygeone2/quotes-fake-api/internal/core/service/quotes"
)

const exampleOrderID = "3fa85f64-5717-4562-b3fc-2c963f66afa6"

type testEnv struct {
	router *http.ServeMux
	store  *sqlstore.Store
}

func newTestEnv(t *testing.T, mode string, seed bool) *testEnv {
	t.Helper()

	store, err := sqlstore.Open(&config.Repository{
		Driver: config.DriverSQLite,
		DBPath: filepath.Join(t.TempDir(), "api.sqlite"),
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if seed {
		if _, _, err := store.Quotes().SeedIfEmpty(ctx, time.Now()); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}
	}

	quoteService := quotes.NewQuoteService(store.Quotes(), nil, mode)
	orderService := orders.NewOrderService(store.Orders(), store.Quotes(), nil)
	healthService := health.NewHealthService(store.DB(), nil, health.Details{DBDriver: store.Driver(), QuoteMode: mode})

	router := http.NewServeMux()
	SetQuoteRoutes(router,
		NewQuoteHandler(quoteService),
		NewOrderHandler(orderService),
		NewStreamHandler(quoteService, time.Second),
		NewHealthHandler(healthService),
	)
	SetDebugRoutes(router, NewDebugHandler(nil))

	return &testEnv{router: router, store: store}
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

var credentials = map[string]string{
	HeaderAPIKey:    "key",
	HeaderAPISecret: "secret",
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %q", rec.Body.String())
	}
	return out
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if got := decodeBody(t, rec)["error"]; got != message {
		t.Fatalf("error = %v, want %q", got, message)
	}
}

func TestGetQuote_JitterSequence(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)

	for want := 1.0; want <= 2; want++ {
		rec := env.do(http.MethodGet, "/v1/quote", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["id"] != want {
			t.Errorf("id = %v, want %v", body["id"], want)
		}
		if offer := body["offer"]; offer != 149.5 && offer != 151.5 {
			t.Errorf("offer = %v, want 149.5 or 151.5", offer)
		}
		if body["symbol"] != "USD" {
			t.Errorf("symbol = %v, want USD", body["symbol"])
		}
		for _, key := range []string{"bid", "last", "timestamp", "lowPrice", "highPrice", "openPrice", "closePrice"} {
			if _, ok := body[key]; !ok {
				t.Errorf("quote is missing %s", key)
			}
		}
	}
}

func TestGetQuote_Passthrough(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModePassthrough, true)

	for i := 0; i < 2; i++ {
		body := decodeBody(t, env.do(http.MethodGet, "/v1/quote", "", nil))
		if body["id"] != 1.0 || body["offer"] != 150.5 {
			t.Fatalf("got %v, want stored quote id 1 offer 150.5", body)
		}
	}
}

func TestGetQuote_PassthroughKeepsTimestampText(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModePassthrough, false)

	_, err := env.store.DB().Exec(
		"INSERT INTO quotes (symbol, offer, bid, last, timestamp, lowPrice, highPrice, openPrice, closePrice) VALUES ('USD', 150.5, 149.5, 150, '2025-03-02 12:00:00', 148, 151, 149, 150.5)",
	)
	if err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	rec := env.do(http.MethodGet, "/v1/quote", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"timestamp":"2025-03-02 12:00:00"`) {
		t.Fatalf("timestamp not returned verbatim: %s", rec.Body.String())
	}
}

func TestGetQuote_EmptyStore(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, false)
	expectError(t, env.do(http.MethodGet, "/v1/quote", "", nil), http.StatusNotFound, "No quotes available")
}

func TestGetQuote_StoreFailure(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)
	env.store.Close()

	rec := env.do(http.MethodGet, "/v1/quote", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if msg, _ := decodeBody(t, rec)["error"].(string); msg == "" {
		t.Fatalf("500 response has no error message")
	}
}

func TestCreateOrder_Example(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)

	before := time.Now().UTC().Truncate(time.Millisecond)
	rec := env.do(http.MethodPut, "/v1/order/"+exampleOrderID,
		`{"amount":100,"currency":"USD","quoteId":1,"side":"buy","valuta":1}`, credentials)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if msg := decodeBody(t, rec)["message"]; msg != "Order created successfully" {
		t.Fatalf("message = %v", msg)
	}

	rec = env.do(http.MethodGet, "/v1/order/"+exampleOrderID, "", credentials)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET order status = %d, want 200", rec.Code)
	}
	order := decodeBody(t, rec)
	if order["id"] != exampleOrderID || order["quoteId"] != 1.0 || order["amount"] != 100.0 {
		t.Errorf("unexpected order %v", order)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, order["createdAt"].(string))
	if err != nil {
		t.Fatalf("createdAt is not ISO-8601: %v", err)
	}
	if createdAt.Before(before) {
		t.Errorf("createdAt %v is before request time %v", createdAt, before)
	}
}

func TestCreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		headers map[string]string
		status  int
		message string
	}{
		{"no credentials", "/v1/order/" + exampleOrderID, `{}`, nil, http.StatusForbidden, "Invalid token"},
		{"secret missing", "/v1/order/" + exampleOrderID, `{}`, map[string]string{HeaderAPIKey: "k"}, http.StatusForbidden, "Invalid token"},
		{"invalid id with valid body", "/v1/order/not-a-uuid", `{"amount":100,"currency":"USD","quoteId":1,"side":"buy","valuta":1}`, credentials, http.StatusBadRequest, "Invalid order ID. Must be a UUID v4."},
		{"invalid id with broken body", "/v1/order/not-a-uuid", `{broken`, credentials, http.StatusBadRequest, "Invalid order ID. Must be a UUID v4."},
		{"broken body", "/v1/order/" + exampleOrderID, `{broken`, credentials, http.StatusBadRequest, "Invalid request body"},
		{"empty body", "/v1/order/" + exampleOrderID, ``, credentials, http.StatusBadRequest, "Missing required parameters"},
		{"missing valuta", "/v1/order/" + exampleOrderID, `{"amount":100,"currency":"USD","quoteId":1,"side":"buy"}`, credentials, http.StatusBadRequest, "Missing required parameters"},
		{"zero quoteId", "/v1/order/" + exampleOrderID, `{"amount":100,"currency":"USD","quoteId":0,"side":"buy","valuta":1}`, credentials, http.StatusBadRequest, "Missing required parameters"},
		{"boolean quoteId", "/v1/order/" + exampleOrderID, `{"amount":100,"currency":"USD","quoteId":true,"side":"buy","valuta":1}`, credentials, http.StatusBadRequest, "Invalid request body"},
		{"fractional valuta", "/v1/order/" + exampleOrderID, `{"amount":100,"currency":"USD","quoteId":1,"side":"buy","valuta":1.5}`, credentials, http.StatusBadRequest, "Invalid request body"},
		{"numeric currency", "/v1/order/" + exampleOrderID, `{"amount":100,"currency":5,"quoteId":1,"side":"buy","valuta":1}`, credentials, http.StatusBadRequest, "Invalid request body"},
		{"unknown quote", "/v1/order/" + exampleOrderID, `{"amount":100,"currency":"USD","quoteId":42,"side":"buy","valuta":1}`, credentials, http.StatusBadRequest, "Quote not found or expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, domain.QuoteModeJitter, true)
			expectError(t, env.do(http.MethodPut, tt.path, tt.body, tt.headers), tt.status, tt.message)
		})
	}
}

func TestCreateOrder_ZeroAmountAndValuta(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)

	rec := env.do(http.MethodPut, "/v1/order/"+exampleOrderID,
		`{"amount":0,"currency":"USD","quoteId":"1","side":"sell","valuta":0}`, credentials)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateOrder_NullValuta(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)

	rec := env.do(http.MethodPut, "/v1/order/"+exampleOrderID,
		`{"amount":100,"currency":"USD","quoteId":1,"side":"buy","valuta":null}`, credentials)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	order := decodeBody(t, env.do(http.MethodGet, "/v1/order/"+exampleOrderID, "", credentials))
	if v, ok := order["valuta"]; !ok || v != nil {
		t.Fatalf("valuta = %v (present %v), want null", v, ok)
	}
}

func TestCreateOrder_DuplicateID(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)
	body := `{"amount":100,"currency":"USD","quoteId":1,"side":"buy","valuta":1}`

	first := env.do(http.MethodPut, "/v1/order/"+exampleOrderID, body, credentials)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want 201", first.Code)
	}

	second := env.do(http.MethodPut, "/v1/order/"+exampleOrderID, body, credentials)
	if second.Code == http.StatusCreated {
		t.Fatalf("duplicate order id was accepted twice")
	}
	if second.Code != http.StatusInternalServerError {
		t.Fatalf("second status = %d, want 500", second.Code)
	}
}

// A jittered quote id is a view counter, not a stored id. Ordering against
// it fails once the counter moves past the stored ids.
func TestCreateOrder_JitteredQuoteIDIsNotAReference(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)

	env.do(http.MethodGet, "/v1/quote", "", nil)
	view := decodeBody(t, env.do(http.MethodGet, "/v1/quote", "", nil))
	if view["id"] != 2.0 {
		t.Fatalf("second quote id = %v, want 2", view["id"])
	}

	rec := env.do(http.MethodPut, "/v1/order/"+exampleOrderID,
		`{"amount":100,"currency":"USD","quoteId":2,"side":"buy","valuta":1}`, credentials)
	expectError(t, rec, http.StatusBadRequest, "Quote not found or expired")
}

func TestGetOrder_Errors(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)

	expectError(t, env.do(http.MethodGet, "/v1/order/"+exampleOrderID, "", nil), http.StatusForbidden, "Invalid token")
	expectError(t, env.do(http.MethodGet, "/v1/order/nope", "", credentials), http.StatusBadRequest, "Invalid order ID. Must be a UUID v4.")
	expectError(t, env.do(http.MethodGet, "/v1/order/"+exampleOrderID, "", credentials), http.StatusNotFound, "Order not found")
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		key, secret string
		ok          bool
	}{
		{"k", "s", true},
		{"anything", "at all", true},
		{"", "s", false},
		{"k", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		err := Authorize(tt.key, tt.secret)
		if (err == nil) != tt.ok {
			t.Errorf("Authorize(%q, %q) = %v, want ok=%v", tt.key, tt.secret, err, tt.ok)
		}
	}
}

func TestHealthAndDebug(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)

	rec := env.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || decodeBody(t, rec)["status"] != "healthy" {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/health/detailed", "", nil)
	components, _ := decodeBody(t, rec)["components"].(map[string]interface{})
	if components["quote_mode"] != "jitter" || components["database_driver"] != "sqlite" {
		t.Fatalf("detailed components = %v", components)
	}

	expectError(t, env.do(http.MethodGet, "/debug/quotes/issued", "", nil), http.StatusServiceUnavailable, "Redis client not available")
}

func TestStreamQuotes(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)
	server := httptest.NewServer(env.router)
	defer server.Close()

	url := strings.Replace(server.URL, "http://", "ws://", 1) + "/v1/quote/stream?interval=1s"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for want := 1.0; want <= 2; want++ {
		var q map[string]interface{}
		if err := conn.ReadJSON(&q); err != nil {
			t.Fatalf("ReadJSON failed: %v", err)
		}
		if q["id"] != want {
			t.Fatalf("streamed id = %v, want %v", q["id"], want)
		}
	}
}

func TestStreamQuotes_BadInterval(t *testing.T) {
	env := newTestEnv(t, domain.QuoteModeJitter, true)

	rec := env.do(http.MethodGet, "/v1/quote/stream?interval=soon", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
