package main

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/reefnet/wholesale/internal/settings"
)

func TestParseQuoteDraft_CoercesAndDefaults(t *testing.T) {
	form := url.Values{}
	form.Set("customer_name", "Harbor Fish Co")
	form.Set("salmon_type", "  Coho ")
	form.Set("grounds_price", "2.00")
	form.Set("processed_weight", "abc")
	form.Set("round_weight", "1500")
	form.Set("storage_days", "3.9")
	form.Set("tendering_rate", "-0.5")

	req := httptest.NewRequest("POST", "/quotes", nil)
	req.Form = form

	draft := parseQuoteDraft(req, parsePricingForm(req).Input(settings.Defaults()))
	if draft.SalmonType != "Coho" {
		t.Fatalf("expected trimmed salmon type, got %q", draft.SalmonType)
	}
	if draft.Input.ProcessedWeight != 0 || draft.Input.RoundWeight != 1500 {
		t.Fatalf("unexpected weights: %+v", draft.Input)
	}
	if draft.Input.StorageDays != 3 {
		t.Fatalf("expected truncated storage days 3, got %d", draft.Input.StorageDays)
	}
	if draft.Input.TenderingRate != 0 {
		t.Fatalf("expected negative tendering rate coerced to 0, got %v", draft.Input.TenderingRate)
	}
	if draft.Input.UnloadingFee != 0.15 || draft.Input.ProfitMarginPct != 15 {
		t.Fatalf("expected settings defaults, got %+v", draft.Input)
	}
	if err := draft.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestParseSettingsForm_Success(t *testing.T) {
	form := url.Values{}
	form.Set("default_tendering_rate", "0.30")
	form.Set("default_unloading_fee", "0.12")
	form.Set("default_profit_margin_pct", "18")
	form.Set("default_storage_cost_per_day", "0.04")
	form.Set("default_shipping_rate_per_mile", "0.03")
	form.Set("default_min_shipping", "0")

	req := httptest.NewRequest("PUT", "/settings", nil)
	req.Form = form

	st, err := parseSettingsForm(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if st.HasGroundsPrice() {
		t.Fatalf("expected grounds price to stay unset")
	}
	if st.DefaultProfitMarginPct != 18 || st.DefaultMinShipping != 0 {
		t.Fatalf("unexpected settings: %+v", st)
	}
}

func TestParseSettingsForm_InvalidNumbers(t *testing.T) {
	base := url.Values{}
	base.Set("default_tendering_rate", "0.25")
	base.Set("default_unloading_fee", "0.15")
	base.Set("default_profit_margin_pct", "15")
	base.Set("default_storage_cost_per_day", "0.05")
	base.Set("default_shipping_rate_per_mile", "0.02")
	base.Set("default_min_shipping", "0.25")

	cases := map[string]string{
		"default_tendering_rate":    "abc",
		"default_unloading_fee":     "-0.01",
		"default_profit_margin_pct": "101",
		"default_min_shipping":      "",
		"default_grounds_price":     "NaN",
	}
	for field, raw := range cases {
		form := url.Values{}
		for k, v := range base {
			form[k] = v
		}
		form.Set(field, raw)

		req := httptest.NewRequest("PUT", "/settings", nil)
		req.Form = form

		if _, err := parseSettingsForm(req); err == nil {
			t.Fatalf("%s=%q: expected validation error", field, raw)
		}
	}
}
