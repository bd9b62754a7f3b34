package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/feirou/backend/config"
	"github.com/feirou/backend/internal/domain"
	"github.com/feirou/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	os.Exit(exitCode)
}

// setupTestRouter creates a test router with default configuration and no
// wired services; service endpoints answer 501.
func setupTestRouter() *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000", "https://app.feirou.*"},
		},
	}

	handler := NewHandler(nil, nil, nil)
	return SetupRouter(cfg, handler)
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "feirou-backend" {
			t.Errorf("service = %v, want feirou-backend", response["service"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter()

		methods := []string{"POST", "PUT", "DELETE", "PATCH"}

		for _, method := range methods {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})

	t.Run("sets request ID header", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Header().Get(RequestIDHeader) == "" {
			t.Error("expected a generated X-Request-ID header")
		}
	})

	t.Run("reuses caller request ID", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set(RequestIDHeader, "caller-id-123")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != "caller-id-123" {
			t.Errorf("X-Request-ID = %q, want caller-id-123", got)
		}
	})
}

// TestUnconfiguredEndpoints tests that service endpoints answer 501 when
// no service is wired
func TestUnconfiguredEndpoints(t *testing.T) {
	endpoints := []string{
		"/api/v1/routes/optimize",
		"/api/v1/markets/match",
		"/api/v1/prices/sync",
	}

	for _, path := range endpoints {
		t.Run(path, func(t *testing.T) {
			router := setupTestRouter()

			req, _ := http.NewRequest("POST", path, strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotImplemented {
				t.Errorf("Status = %d, want %d", w.Code, http.StatusNotImplemented)
			}
		})
	}
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("allows exact origin", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
		}
	})

	t.Run("allows wildcard-matched origin", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "https://app.feirou.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.feirou.example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q, want wildcard-matched origin", got)
		}
	})

	t.Run("ignores disallowed origin", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("answers preflight with 204", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("OPTIONS", "/api/v1/routes/optimize", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNoContent)
		}
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		router := setupTestRouter()

		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest("GET", "/panic", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}

// --- Mock implementations for testing with real services ---

// mockCatalog is an in-memory domain.CatalogRepository
type mockCatalog struct {
	markets  []domain.RegisteredMarket
	products []domain.Product
	records  map[string][]domain.PriceRecord
	saved    []domain.PriceRecord
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{records: make(map[string][]domain.PriceRecord)}
}

func (m *mockCatalog) ListMarkets(ctx context.Context) ([]domain.RegisteredMarket, error) {
	return m.markets, nil
}

func (m *mockCatalog) MarketsByIDs(ctx context.Context, ids []string) ([]domain.RegisteredMarket, error) {
	var out []domain.RegisteredMarket
	for _, market := range m.markets {
		for _, id := range ids {
			if market.ID == id {
				out = append(out, market)
			}
		}
	}
	return out, nil
}

func (m *mockCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return m.products, nil
}

func (m *mockCatalog) PriceRecords(ctx context.Context, productID string, marketIDs []string) ([]domain.PriceRecord, error) {
	return m.records[productID], nil
}

func (m *mockCatalog) SavePriceRecord(ctx context.Context, productID string, record domain.PriceRecord) error {
	m.saved = append(m.saved, record)
	return nil
}

// mockPriceSource returns canned observations
type mockPriceSource struct {
	observations []domain.ExternalObservation
	err          error
}

func (m *mockPriceSource) Search(ctx context.Context, query domain.PriceQuery) ([]domain.ExternalObservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.observations, nil
}

func testMarkets() []domain.RegisteredMarket {
	return []domain.RegisteredMarket{
		{
			ID:        "mkt-a",
			Name:      "Mercado Central",
			LegalName: "Mercado Central Ltda",
			Address: &domain.Address{
				Street:       "Rua das Flores",
				Number:       "123",
				Neighborhood: "Centro",
			},
		},
		{
			ID:   "mkt-b",
			Name: "Atacadão Bom Preço",
		},
	}
}

// setupTestRouterWithServices wires real usecase services over mocks
func setupTestRouterWithServices(catalog *mockCatalog, feed domain.PriceSource) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}

	matcher := usecase.NewMarketMatcher(usecase.MatcherConfig{})
	ranker := usecase.NewRouteRanker(nil, false)
	assigner := usecase.NewPriceAssigner(false)
	analyzer := usecase.NewCostBenefitAnalyzer(usecase.DefaultCostModel(), nil, false)
	optimizer := usecase.NewOptimizer(catalog, ranker, assigner, analyzer, false)
	syncer := usecase.NewPriceSyncService(catalog, feed, matcher, usecase.SyncConfig{Concurrency: 1})

	handler := NewHandler(optimizer, syncer, catalog)
	return SetupRouter(cfg, handler)
}

// TestOptimizeEndpoint tests route optimization end-to-end over mocks
func TestOptimizeEndpoint(t *testing.T) {
	t.Run("returns a complete report", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.markets = testMarkets()
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		payload := `{
			"userAddress": "Rua A, 100 - Centro",
			"selectedMarketIds": ["mkt-a", "mkt-b"],
			"items": [
				{
					"id": "item-1",
					"productId": "prod-1",
					"quantity": 2,
					"priceRecords": [
						{"marketId": "mkt-a", "unitPrice": 20.0},
						{"marketId": "mkt-b", "unitPrice": 18.0}
					]
				},
				{
					"id": "item-2",
					"productId": "prod-2",
					"quantity": 1
				}
			]
		}`
		req, _ := http.NewRequest("POST", "/api/v1/routes/optimize", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var report domain.RouteReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if len(report.OptimizedRoute) != 1 {
			t.Fatalf("OptimizedRoute has %d markets, want 1", len(report.OptimizedRoute))
		}
		if report.OptimizedRoute[0].MarketID != "mkt-b" {
			t.Errorf("winning market = %s, want mkt-b", report.OptimizedRoute[0].MarketID)
		}
		if len(report.UnassignedItems) != 1 {
			t.Fatalf("UnassignedItems has %d entries, want 1", len(report.UnassignedItems))
		}
		if report.UnassignedItems[0].ItemID != "item-2" {
			t.Errorf("unassigned item = %s, want item-2", report.UnassignedItems[0].ItemID)
		}
		if report.Summary == "" {
			t.Error("expected a non-empty summary")
		}
	})

	t.Run("returns 400 for missing address", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.markets = testMarkets()
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		payload := `{"selectedMarketIds": ["mkt-a"], "items": [{"id": "i", "productId": "p", "quantity": 1}]}`
		req, _ := http.NewRequest("POST", "/api/v1/routes/optimize", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns 400 for unknown markets", func(t *testing.T) {
		catalog := newMockCatalog()
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		payload := `{"userAddress": "Rua A", "selectedMarketIds": ["ghost"], "items": [{"id": "i", "productId": "p", "quantity": 1}]}`
		req, _ := http.NewRequest("POST", "/api/v1/routes/optimize", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		catalog := newMockCatalog()
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		req, _ := http.NewRequest("POST", "/api/v1/routes/optimize", strings.NewReader(`{invalid json}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestMatchEndpoint tests the audit matching endpoint
func TestMatchEndpoint(t *testing.T) {
	t.Run("returns match result", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.markets = testMarkets()
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		payload := `{
			"marketId": "mkt-a",
			"observation": {
				"establishmentName": "MERCADO CENTRAL LTDA",
				"addressText": "R DAS FLORES 123 CENTRO",
				"price": 9.99
			}
		}`
		req, _ := http.NewRequest("POST", "/api/v1/markets/match", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var result domain.MatchResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if !result.WouldMatch {
			t.Errorf("WouldMatch = false, want true")
		}
	})

	t.Run("returns 404 for unknown market", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.markets = testMarkets()
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		payload := `{"marketId": "ghost", "observation": {"establishmentName": "X"}}`
		req, _ := http.NewRequest("POST", "/api/v1/markets/match", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("returns 400 for missing marketId", func(t *testing.T) {
		catalog := newMockCatalog()
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		payload := `{"observation": {"establishmentName": "X"}}`
		req, _ := http.NewRequest("POST", "/api/v1/markets/match", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestSyncEndpoint tests the price-sync trigger endpoint
func TestSyncEndpoint(t *testing.T) {
	t.Run("syncs explicit products", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.markets = testMarkets()
		feed := &mockPriceSource{
			observations: []domain.ExternalObservation{
				{
					EstablishmentName: "MERCADO CENTRAL LTDA",
					AddressText:       "R DAS FLORES 123 CENTRO",
					Price:             12.50,
				},
			},
		}
		router := setupTestRouterWithServices(catalog, feed)

		payload := `{"products": [{"id": "prod-1", "name": "Arroz Branco 5kg"}]}`
		req, _ := http.NewRequest("POST", "/api/v1/prices/sync", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var summary usecase.SyncSummary
		if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if summary.ProductsSynced != 1 {
			t.Errorf("ProductsSynced = %d, want 1", summary.ProductsSynced)
		}
		if summary.Saved != 1 {
			t.Errorf("Saved = %d, want 1", summary.Saved)
		}
		if len(catalog.saved) != 1 {
			t.Errorf("catalog has %d saved records, want 1", len(catalog.saved))
		}
	})

	t.Run("falls back to catalog products when body omits them", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.markets = testMarkets()
		catalog.products = []domain.Product{
			{ID: "prod-1", Name: "Arroz Branco 5kg"},
			{ID: "prod-2", Name: "Feijão Carioca 1kg"},
		}
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		req, _ := http.NewRequest("POST", "/api/v1/prices/sync", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var summary usecase.SyncSummary
		if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if summary.ProductsSynced != 2 {
			t.Errorf("ProductsSynced = %d, want 2", summary.ProductsSynced)
		}
	})

	t.Run("returns 400 when catalog is empty", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.markets = testMarkets()
		router := setupTestRouterWithServices(catalog, &mockPriceSource{})

		req, _ := http.NewRequest("POST", "/api/v1/prices/sync", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
