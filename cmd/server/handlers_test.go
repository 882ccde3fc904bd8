package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/reefnet/wholesale/internal/catalog"
	"github.com/reefnet/wholesale/internal/db"
	"github.com/reefnet/wholesale/internal/migrations"
	"github.com/reefnet/wholesale/internal/quote"
	"github.com/reefnet/wholesale/internal/settings"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	start := time.Date(2025, 9, 3, 14, 5, 9, 0, time.UTC)
	n := 0
	clock := func() time.Time {
		ts := start.Add(time.Duration(n) * time.Minute)
		n++
		return ts
	}

	return &server{
		settings: settings.NewSQLStore(database),
		catalog:  catalog.Default(),
		quotes:   quote.NewService(quote.NewSQLStore(database), zap.NewNop(), quote.WithClock(clock)),
		logger:   zap.NewNop(),
	}
}

func doForm(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func quoteForm() url.Values {
	form := url.Values{}
	form.Set("customer_name", "Harbor Fish Co")
	form.Set("customer_email", "buyer@harborfish.example")
	form.Set("salmon_type", "Sockeye")
	form.Set("grounds_price", "2.00")
	form.Set("processed_weight", "1000")
	form.Set("processing_option_id", catalog.GlazeBoxHG)
	return form
}

func TestHealth(t *testing.T) {
	h := newTestServer(t).routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestProcessingOptionsListsCatalogInOrder(t *testing.T) {
	h := newTestServer(t).routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/processing-options", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	options := decode[[]catalog.Option](t, rr)
	if len(options) != 6 {
		t.Fatalf("expected 6 options, got %d", len(options))
	}
	if options[0].ID != catalog.GlazeBoxHG {
		t.Fatalf("expected first option %s, got %s", catalog.GlazeBoxHG, options[0].ID)
	}
}

func TestCalcUsesStoredSettingsDefaults(t *testing.T) {
	h := newTestServer(t).routes()

	form := url.Values{}
	form.Set("grounds_price", "2.00")
	form.Set("processed_weight", "1000")
	form.Set("processing_option_id", catalog.GlazeBoxHG)

	rr := doForm(t, h, http.MethodPost, "/pricing/calc", form)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decode[calcResponse](t, rr)
	if resp.Input.TenderingRate != 0.25 || resp.Input.UnloadingFee != 0.15 || resp.Input.ProfitMarginPct != 15 {
		t.Fatalf("expected settings defaults in input, got %+v", resp.Input)
	}
	if math.Abs(resp.Result.PreRecoveryBase-2.65) > 1e-9 {
		t.Fatalf("expected pre-recovery base 2.65, got %v", resp.Result.PreRecoveryBase)
	}
	if math.Abs(resp.Result.FinalPricePerLb-4.408333333333333) > 1e-9 {
		t.Fatalf("expected final price 4.4083, got %v", resp.Result.FinalPricePerLb)
	}
}

func TestCalcRejectsMissingGroundsPrice(t *testing.T) {
	h := newTestServer(t).routes()

	form := url.Values{}
	form.Set("processed_weight", "1000")

	rr := doForm(t, h, http.MethodPost, "/pricing/calc", form)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if resp := decode[errorResponse](t, rr); resp.Error == "" {
		t.Fatalf("expected error message")
	}
}

func TestCalcReportsProcessingFallback(t *testing.T) {
	h := newTestServer(t).routes()

	form := url.Values{}
	form.Set("grounds_price", "2.00")
	form.Set("processed_weight", "1000")
	form.Set("processing_option_id", "SmokedWhole")

	rr := doForm(t, h, http.MethodPost, "/pricing/calc", form)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	resp := decode[calcResponse](t, rr)
	if !resp.Result.ProcessingFallback || resp.Result.ProcessingOptionID != catalog.GlazeBoxHG {
		t.Fatalf("expected fallback to %s, got %+v", catalog.GlazeBoxHG, resp.Result)
	}
}

func TestSettingsSaveGetAndReset(t *testing.T) {
	h := newTestServer(t).routes()

	form := url.Values{}
	form.Set("default_grounds_price", "2.10")
	form.Set("default_tendering_rate", "0.30")
	form.Set("default_unloading_fee", "0.12")
	form.Set("default_profit_margin_pct", "18")
	form.Set("default_storage_cost_per_day", "0.04")
	form.Set("default_shipping_rate_per_mile", "0.03")
	form.Set("default_min_shipping", "0.40")

	rr := doForm(t, h, http.MethodPut, "/settings", form)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/settings", nil))
	got := decode[settings.Settings](t, rr)
	if got.DefaultGroundsPrice != 2.10 || got.DefaultMinShipping != 0.40 {
		t.Fatalf("unexpected saved settings: %+v", got)
	}

	rr = doForm(t, h, http.MethodPost, "/settings/reset", url.Values{})
	if reset := decode[settings.Settings](t, rr); reset != settings.Defaults() {
		t.Fatalf("expected defaults from reset, got %+v", reset)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if after := decode[settings.Settings](t, rr); after != got {
		t.Fatalf("reset must not persist, got %+v", after)
	}
}

func TestSettingsSaveRejectsInvalidValues(t *testing.T) {
	h := newTestServer(t).routes()

	form := url.Values{}
	form.Set("default_tendering_rate", "-1")
	form.Set("default_unloading_fee", "0.15")
	form.Set("default_profit_margin_pct", "15")
	form.Set("default_storage_cost_per_day", "0.05")
	form.Set("default_shipping_rate_per_mile", "0.02")
	form.Set("default_min_shipping", "0.25")

	rr := doForm(t, h, http.MethodPut, "/settings", form)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCreateQuoteAndReadBack(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doForm(t, h, http.MethodPost, "/quotes", quoteForm())
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[quote.Quote](t, rr)
	if created.ID == "" || created.Customer.Name != "Harbor Fish Co" {
		t.Fatalf("unexpected quote: %+v", created)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/quotes/"+created.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	detail := decode[quote.Quote](t, rr)
	if detail.Result.FinalPricePerLb != created.Result.FinalPricePerLb {
		t.Fatalf("expected snapshot price %v, got %v", created.Result.FinalPricePerLb, detail.Result.FinalPricePerLb)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/quotes", nil))
	if list := decode[[]quote.Quote](t, rr); len(list) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(list))
	}
}

func TestCreateQuoteReportsMissingFields(t *testing.T) {
	h := newTestServer(t).routes()

	form := url.Values{}
	form.Set("grounds_price", "2.00")

	rr := doForm(t, h, http.MethodPost, "/quotes", form)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
	resp := decode[errorResponse](t, rr)
	if len(resp.Fields) != 2 || resp.Fields[0] != "customer name" || resp.Fields[1] != "weight" {
		t.Fatalf("unexpected fields: %v", resp.Fields)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/quotes", nil))
	if list := decode[[]quote.Quote](t, rr); len(list) != 0 {
		t.Fatalf("expected no quotes, got %d", len(list))
	}
}

func TestHandleQuoteTextReturnsPlainText(t *testing.T) {
	srv := newTestServer(t)

	rr := doForm(t, srv.routes(), http.MethodPost, "/quotes", quoteForm())
	created := decode[quote.Quote](t, rr)

	req := httptest.NewRequest(http.MethodGet, "/quotes/"+created.ID+"/text", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", created.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr = httptest.NewRecorder()
	srv.handleQuoteText(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "reefnet-quote-Harbor Fish Co-2025-09-03.txt") {
		t.Fatalf("unexpected disposition %q", rr.Header().Get("Content-Disposition"))
	}

	body := rr.Body.String()
	for _, expected := range []string{"REEFNET SALMON - WHOLESALE QUOTE", "Customer: Harbor Fish Co", "Type: Sockeye", "$4.41 per lb", "Extended Price: $4408.33"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got: %s", expected, body)
		}
	}
}

func TestQuoteNotFound(t *testing.T) {
	h := newTestServer(t).routes()

	for _, target := range []string{"/quotes/missing", "/quotes/missing/text"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", target, rr.Code)
		}
	}
}

func TestDeleteQuoteIsIdempotent(t *testing.T) {
	h := newTestServer(t).routes()

	created := decode[quote.Quote](t, doForm(t, h, http.MethodPost, "/quotes", quoteForm()))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/quotes/"+created.ID, nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("delete %d: expected status 204, got %d", i+1, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/quotes/"+created.ID, nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rr.Code)
	}
}

func TestExportQuotesXLSX(t *testing.T) {
	h := newTestServer(t).routes()
	doForm(t, h, http.MethodPost, "/quotes", quoteForm())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/quotes/export.xlsx", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "spreadsheetml") {
		t.Fatalf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
	// XLSX files are zip archives.
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Fatalf("expected zip payload")
	}
}

func TestQuoteTextDispositionEncodesNonASCIIName(t *testing.T) {
	h := newTestServer(t).routes()

	form := quoteForm()
	form.Set("customer_name", "Zoë Fisheries")
	created := decode[quote.Quote](t, doForm(t, h, http.MethodPost, "/quotes", form))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/quotes/"+created.ID+"/text", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	header := rr.Header().Get("Content-Disposition")
	if strings.Contains(header, `\u`) {
		t.Fatalf("disposition carries Go escapes: %q", header)
	}
	disposition, params, err := mime.ParseMediaType(header)
	if err != nil {
		t.Fatalf("parse disposition %q: %v", header, err)
	}
	if disposition != "attachment" {
		t.Fatalf("expected attachment, got %q", disposition)
	}
	if want := "reefnet-quote-Zoë Fisheries-2025-09-03.txt"; params["filename"] != want {
		t.Fatalf("filename=%q, want %q", params["filename"], want)
	}
}

func TestExportFailureReturnsServerError(t *testing.T) {
	srv := newTestServer(t)
	srv.exportXLSX = func(w io.Writer, quotes []quote.Quote) error {
		_, _ = w.Write([]byte("PK partial"))
		return errors.New("workbook write failed")
	}
	h := srv.routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/quotes/export.xlsx", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Header().Get("Content-Type"), "spreadsheetml") {
		t.Fatalf("spreadsheet content type sent with a failed export")
	}
	if resp := decode[errorResponse](t, rr); resp.Error != "failed to export quotes" {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}
