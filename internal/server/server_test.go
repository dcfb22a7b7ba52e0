package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jgoulah/gridsizer/pkg/engine"
	"github.com/jgoulah/gridsizer/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCatalog struct {
	products []models.Product
	err      error
}

func (f *fakeCatalog) ListBundles() ([]models.Product, error) {
	return f.products, f.err
}

type fakeQuotes struct {
	mu        sync.Mutex
	saved     []models.Quote
	published map[string]bool
}

func (f *fakeQuotes) SaveQuote(q *models.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = "quote-" + string(rune('a'+len(f.saved)))
	q.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	f.saved = append(f.saved, *q)
	return nil
}

func (f *fakeQuotes) ListQuotes(limit int) ([]models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > 0 && limit < len(f.saved) {
		return f.saved[:limit], nil
	}
	return f.saved, nil
}

func (f *fakeQuotes) MarkQuotePublished(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = map[string]bool{}
	}
	f.published[id] = true
	return nil
}

type fakePublisher struct {
	got []models.Quote
	err error
}

func (f *fakePublisher) PublishQuote(q models.Quote) error {
	f.got = append(f.got, q)
	return f.err
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func newTestServer(opts Options) *Server {
	return New(engine.Default(), opts, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestEstimateAppliancePlan(t *testing.T) {
	catalog := &fakeCatalog{products: []models.Product{
		{ID: "bundle-home-5kva", Name: "Home Essential 5KVA", Type: models.ProductBundle, InverterKVA: 5},
	}}
	h := newTestServer(Options{Catalog: catalog}).Handler()

	code, resp := do(t, h, http.MethodPost, "/api/calculator/estimate",
		`{"appliances":[{"id":"iron","quantity":1,"hoursPerDay":8}],"propertyType":"residential","energyObjective":"standard"}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	var rec struct {
		Recommendation struct {
			Primary struct {
				ID           string  `json:"id"`
				InverterSize float64 `json:"inverterSize"`
				Price        float64 `json:"price"`
			} `json:"primary"`
			Alternatives []json.RawMessage `json:"alternatives"`
		} `json:"recommendation"`
		Matches []models.Product `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &rec))
	assert.Equal(t, "system-optimal", rec.Recommendation.Primary.ID)
	assert.Equal(t, 2.0, rec.Recommendation.Primary.InverterSize)
	assert.Equal(t, 11440.0, rec.Recommendation.Primary.Price)
	assert.Len(t, rec.Recommendation.Alternatives, 2)
	require.Len(t, rec.Matches, 1)
	assert.Equal(t, "bundle-home-5kva", rec.Matches[0].ID)
}

func TestEstimateUsageShape(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	code, resp := do(t, h, http.MethodPost, "/api/calculator/estimate",
		`{"monthlyUsage":900,"peakDemand":4,"backupHours":8,"propertyType":"commercial"}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), `"assumedMonthlyUsage":900`)
}

func TestEstimateCatalogFailureStillSizes(t *testing.T) {
	h := newTestServer(Options{Catalog: &fakeCatalog{err: errors.New("disk gone")}}).Handler()

	code, resp := do(t, h, http.MethodPost, "/api/calculator/estimate",
		`{"appliances":[{"id":"tv-led","quantity":2,"hoursPerDay":5}]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"matches":[]`)
}

func TestEstimateErrors(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed json", body: `{"appliances":`, code: CodeBadRequest},
		{name: "empty plan", body: `{"appliances":[]}`, code: CodeInvalidLoadPlan},
		{name: "all zero quantity", body: `{"appliances":[{"id":"iron","quantity":0,"hoursPerDay":2}]}`, code: CodeInvalidLoadPlan},
		{name: "unknown appliance", body: `{"appliances":[{"id":"jacuzzi","quantity":1,"hoursPerDay":2}]}`, code: CodeInvalidLoadPlan},
		{name: "unknown objective", body: `{"appliances":[{"id":"iron","quantity":1,"hoursPerDay":2}],"energyObjective":"lunar"}`, code: CodeInvalidGoalProfile},
		{name: "unknown property", body: `{"appliances":[{"id":"iron","quantity":1,"hoursPerDay":2}],"propertyType":"castle"}`, code: CodeInvalidGoalProfile},
		{name: "unknown preset", body: `{"appliances":[{"id":"iron","quantity":1,"hoursPerDay":2}],"preset":"euro"}`, code: CodeUnknownPreset},
		{name: "wattage overflows", body: `{"appliances":[{"id":"x","wattage":1e308,"quantity":2,"hoursPerDay":4}]}`, code: CodeInvalidLoadPlan},
		{name: "savings overflow", body: `{"appliances":[{"id":"iron","quantity":1,"hoursPerDay":2}],"monthlyUsage":1e308,"utilityRate":1e308}`, code: CodeInvalidLoadPlan},
		{name: "number out of range", body: `{"appliances":[{"id":"x","wattage":1e999,"quantity":1,"hoursPerDay":4}]}`, code: CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := do(t, h, http.MethodPost, "/api/calculator/estimate", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestComponents(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	code, resp := do(t, h, http.MethodPost, "/api/calculator/components",
		`{"systemType":"residential","batteryCapacity":8,"inverterSize":2,"solarPanels":2}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	var parts struct {
		Currency  string `json:"currency"`
		Batteries []struct {
			Capacity    float64 `json:"capacity"`
			Price       float64 `json:"price"`
			Recommended bool    `json:"recommended"`
		} `json:"batteries"`
		Accessories []struct {
			ID       string `json:"id"`
			Required bool   `json:"required"`
		} `json:"accessories"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &parts))
	assert.Equal(t, "USD", parts.Currency)
	require.Len(t, parts.Batteries, 1)
	assert.Equal(t, 6400.0, parts.Batteries[0].Price)
	assert.True(t, parts.Batteries[0].Recommended)
	require.Len(t, parts.Accessories, 2)
	assert.Equal(t, "surge-protection", parts.Accessories[1].ID)
	assert.True(t, parts.Accessories[1].Required)
	assert.Equal(t, 9549.0, parts.Total)
}

func TestComponentsErrors(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed json", body: `{"batteryCapacity":`, code: CodeBadRequest},
		{name: "missing battery", body: `{"inverterSize":2}`, code: CodeInvalidSizing},
		{name: "negative inverter", body: `{"batteryCapacity":8,"inverterSize":-5}`, code: CodeInvalidSizing},
		{name: "price overflows", body: `{"batteryCapacity":1.7e308,"inverterSize":2}`, code: CodeInvalidSizing},
		{name: "unknown preset", body: `{"batteryCapacity":8,"inverterSize":2,"preset":"euro"}`, code: CodeUnknownPreset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := do(t, h, http.MethodPost, "/api/calculator/components", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestSavings(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	code, resp := do(t, h, http.MethodGet, "/api/calculator/savings/Texas?usage=1000", "")
	require.Equal(t, http.StatusOK, code)

	var got struct {
		Location       string  `json:"location"`
		CurrentBill    float64 `json:"currentBill"`
		MonthlySavings float64 `json:"monthlySavings"`
		Incentives     struct {
			Federal float64 `json:"federal"`
			State   float64 `json:"state"`
		} `json:"incentives"`
		GridReliability float64 `json:"gridReliability"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "texas", got.Location)
	assert.InDelta(t, 120.0, got.CurrentBill, 1e-9)
	assert.InDelta(t, 84.0, got.MonthlySavings, 1e-9)
	assert.Equal(t, 0.30, got.Incentives.Federal)
	assert.Equal(t, 0.15, got.Incentives.State)
	assert.Equal(t, 0.92, got.GridReliability)

	code, resp = do(t, h, http.MethodGet, "/api/calculator/savings/mars", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"location":"default"`)
	assert.Contains(t, string(resp.Data), `"monthlyUsage":1000`)
}

func TestSavingsRejectsBadUsage(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	for _, usage := range []string{"lots", "-5", "NaN", "Inf", "1e999"} {
		t.Run(usage, func(t *testing.T) {
			code, resp := do(t, h, http.MethodGet, "/api/calculator/savings/texas?usage="+usage, "")
			assert.Equal(t, http.StatusBadRequest, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, CodeBadRequest, resp.Error.Code)
		})
	}
}

// brokenWriter accepts headers but fails every body write
type brokenWriter struct {
	header http.Header
	status int
}

func (b *brokenWriter) Header() http.Header { return b.header }

func (b *brokenWriter) WriteHeader(status int) { b.status = status }

func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(engine.Default(), Options{}, zap.New(core))

	w := &brokenWriter{header: http.Header{}}
	s.writeData(w, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.status)
	entries := logs.FilterMessage("encoding response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}

func TestCatalogAppliancesPresets(t *testing.T) {
	h := newTestServer(Options{Catalog: &fakeCatalog{products: []models.Product{{ID: "b1", Type: models.ProductBundle}}}}).Handler()

	code, resp := do(t, h, http.MethodGet, "/api/catalog/bundles", "")
	require.Equal(t, http.StatusOK, code)
	var bundles []models.Product
	require.NoError(t, json.Unmarshal(resp.Data, &bundles))
	assert.Len(t, bundles, 1)

	code, resp = do(t, h, http.MethodGet, "/api/appliances", "")
	require.Equal(t, http.StatusOK, code)
	var appliances []models.Appliance
	require.NoError(t, json.Unmarshal(resp.Data, &appliances))
	assert.Len(t, appliances, len(models.DefaultAppliances()))

	code, resp = do(t, h, http.MethodGet, "/api/presets", "")
	require.Equal(t, http.StatusOK, code)
	var presets struct {
		Default string `json:"default"`
		Presets []struct {
			Name string `json:"name"`
		} `json:"presets"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &presets))
	assert.Equal(t, "platform", presets.Default)
	assert.Len(t, presets.Presets, 3)
}

func TestCatalogBundlesError(t *testing.T) {
	h := newTestServer(Options{Catalog: &fakeCatalog{err: errors.New("boom")}}).Handler()

	code, resp := do(t, h, http.MethodGet, "/api/catalog/bundles", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternal, resp.Error.Code)
}

func TestCreateQuotePublishes(t *testing.T) {
	quotes := &fakeQuotes{}
	pub := &fakePublisher{}
	h := newTestServer(Options{Quotes: quotes, Publisher: pub}).Handler()

	code, resp := do(t, h, http.MethodPost, "/api/quotes",
		`{"appliances":[{"id":"iron","quantity":1,"hoursPerDay":8}],"contact":"me@example.com"}`)
	require.Equal(t, http.StatusCreated, code)

	var body quoteResponse
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.Equal(t, "quote-a", body.Quote.ID)
	assert.Equal(t, "me@example.com", body.Quote.Contact)
	assert.Equal(t, 11440.0, body.Quote.TotalPrice)
	assert.True(t, body.Quote.Published)

	require.Len(t, quotes.saved, 1)
	assert.NotEmpty(t, quotes.saved[0].Payload)
	require.Len(t, pub.got, 1)
	assert.Equal(t, "quote-a", pub.got[0].ID)
	assert.True(t, quotes.published["quote-a"])

	code, resp = do(t, h, http.MethodGet, "/api/quotes?limit=10", "")
	require.Equal(t, http.StatusOK, code)
	var list []models.Quote
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 1)
}

func TestCreateQuotePublishFailureKeepsQuote(t *testing.T) {
	quotes := &fakeQuotes{}
	h := newTestServer(Options{Quotes: quotes, Publisher: &fakePublisher{err: errors.New("broker down")}}).Handler()

	code, resp := do(t, h, http.MethodPost, "/api/quotes", `{"appliances":[{"id":"iron","quantity":1,"hoursPerDay":8}]}`)
	require.Equal(t, http.StatusCreated, code)

	var body quoteResponse
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.False(t, body.Quote.Published)
	assert.Len(t, quotes.saved, 1)
	assert.Empty(t, quotes.published)
}

func TestCreateQuoteRejectsInvalidPlan(t *testing.T) {
	quotes := &fakeQuotes{}
	h := newTestServer(Options{Quotes: quotes}).Handler()

	code, resp := do(t, h, http.MethodPost, "/api/quotes", `{"appliances":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, CodeInvalidLoadPlan, resp.Error.Code)
	assert.Empty(t, quotes.saved)
}

func TestListQuotesBadLimit(t *testing.T) {
	h := newTestServer(Options{Quotes: &fakeQuotes{}}).Handler()

	code, resp := do(t, h, http.MethodGet, "/api/quotes?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
}

func TestQuoteRoutesNeedStore(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	code, resp := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Data))
}

func TestStartShutsDownOnCancel(t *testing.T) {
	s := newTestServer(Options{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartReportsListenError(t *testing.T) {
	s := newTestServer(Options{Addr: "127.0.0.1:-1"})

	err := s.Start(context.Background())
	assert.Error(t, err)
}
