package quote

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefnet/wholesale/internal/pricing"
)

func TestRenderPrintableText(t *testing.T) {
	q := Quote{
		ID:         "q-1",
		CreatedAt:  time.Date(2025, 9, 3, 14, 5, 9, 0, time.UTC),
		Customer:   Customer{Name: "Harbor Fish Co", Email: "buyer@harborfish.example", Phone: "555-0100"},
		SalmonType: "Sockeye",
		Notes:      "Deliver to cold storage dock B",
		Input:      pricing.Input{ProcessedWeight: 1000, ProcessingOptionID: "GlazeBoxHG"},
		Result:     pricing.Result{FinalPricePerLb: 4.41},
	}

	doc := RenderPrintable(q)

	want := "REEFNET SALMON - WHOLESALE QUOTE\n" +
		"Generated: 9/3/2025, 2:05:09 PM\n" +
		"------------------------------------------------------------\n" +
		"\n" +
		"Customer Information\n" +
		"Customer: Harbor Fish Co\n" +
		"Contact: buyer@harborfish.example\n" +
		"Phone: 555-0100\n" +
		"\n" +
		"Salmon Details\n" +
		"Type: Sockeye\n" +
		"Quantity: 1000 lbs (processed)\n" +
		"Processing: GlazeBoxHG\n" +
		"\n" +
		"Final Price\n" +
		"$4.41 per lb\n" +
		"Total Quantity: 1000 lbs\n" +
		"Extended Price: $4410.00\n" +
		"\n" +
		"Notes\n" +
		"Deliver to cold storage dock B\n"

	assert.Equal(t, want, doc.Text())
	assert.Equal(t, "reefnet-quote-Harbor Fish Co-2025-09-03.txt", doc.Filename)
}

func TestRenderPrintableMissingValues(t *testing.T) {
	q := Quote{
		CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Customer:  Customer{Name: "Solo Buyer"},
		Input:     pricing.Input{ProcessedWeight: math.NaN()},
		Result:    pricing.Result{FinalPricePerLb: math.NaN()},
	}

	doc := RenderPrintable(q)
	require.Len(t, doc.Sections, 4)

	assert.Equal(t, []string{"Customer: Solo Buyer", "Contact: -", "Phone: -"}, doc.Sections[0].Lines)
	assert.Equal(t, []string{"Type: -", "Quantity: 0 lbs (processed)", "Processing: -"}, doc.Sections[1].Lines)
	assert.Equal(t, []string{"$0.00 per lb", "Total Quantity: 0 lbs", "Extended Price: $0.00"}, doc.Sections[2].Lines)
	assert.Equal(t, []string{"-"}, doc.Sections[3].Lines)
	assert.Equal(t, "Generated: 1/2/2025, 12:00:00 AM", doc.Generated)
}

func TestRenderPrintableFractionalQuantity(t *testing.T) {
	q := Quote{
		CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Customer:  Customer{Name: "A"},
		Input:     pricing.Input{ProcessedWeight: 1250.5},
		Result:    pricing.Result{FinalPricePerLb: 2},
	}

	doc := RenderPrintable(q)
	assert.Equal(t, "Quantity: 1250.5 lbs (processed)", doc.Sections[1].Lines[1])
	assert.Equal(t, "Extended Price: $2501.00", doc.Sections[2].Lines[2])
}

func TestRenderPrintableFilenameStaysInDirectory(t *testing.T) {
	created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	cases := map[string]string{
		"A/B Seafoods":   "reefnet-quote-A-B Seafoods-2025-01-02.txt",
		"../../tmp/evil": "reefnet-quote-------tmp-evil-2025-01-02.txt",
		`C:\fish\..\co`:  "reefnet-quote-C--fish----co-2025-01-02.txt",
		"Zoë Fisheries":  "reefnet-quote-Zoë Fisheries-2025-01-02.txt",
		"   ":            "reefnet-quote---2025-01-02.txt",
	}
	for name, want := range cases {
		doc := RenderPrintable(Quote{CreatedAt: created, Customer: Customer{Name: name}})
		assert.Equal(t, want, doc.Filename, "name %q", name)
		assert.Equal(t, ".", filepath.Dir(doc.Filename), "name %q", name)
		assert.NotContains(t, doc.Filename, "..", "name %q", name)
	}
}
