package quote

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	documentTitle   = "REEFNET SALMON - WHOLESALE QUOTE"
	generatedLayout = "1/2/2006, 3:04:05 PM"
	ruleWidth       = 60
)

// Section is a headed block of document lines.
type Section struct {
	Heading string
	Lines   []string
}

// Document is the printable form of a quote.
type Document struct {
	Title     string
	Generated string
	Sections  []Section
	Filename  string
}

// RenderPrintable lays out q as a printable document. Missing numbers print
// as 0 and missing text as "-".
func RenderPrintable(q Quote) Document {
	quantity := safeNum(q.Input.ProcessedWeight)
	price := safeNum(q.Result.FinalPricePerLb)

	return Document{
		Title:     documentTitle,
		Generated: "Generated: " + q.CreatedAt.Format(generatedLayout),
		Sections: []Section{
			{
				Heading: "Customer Information",
				Lines: []string{
					"Customer: " + safeStr(q.Customer.Name),
					"Contact: " + safeStr(q.Customer.Email),
					"Phone: " + safeStr(q.Customer.Phone),
				},
			},
			{
				Heading: "Salmon Details",
				Lines: []string{
					"Type: " + safeStr(q.SalmonType),
					"Quantity: " + formatNum(quantity) + " lbs (processed)",
					"Processing: " + safeStr(q.Input.ProcessingOptionID),
				},
			},
			{
				Heading: "Final Price",
				Lines: []string{
					fmt.Sprintf("$%.2f per lb", price),
					"Total Quantity: " + formatNum(quantity) + " lbs",
					fmt.Sprintf("Extended Price: $%.2f", safeNum(price*quantity)),
				},
			},
			{
				Heading: "Notes",
				Lines:   []string{safeStr(q.Notes)},
			},
		},
		Filename: fmt.Sprintf("reefnet-quote-%s-%s.txt", filenameSegment(q.Customer.Name), q.CreatedAt.Format("2006-01-02")),
	}
}

// Text returns the document's textual content.
func (d Document) Text() string {
	var b strings.Builder
	b.WriteString(d.Title)
	b.WriteByte('\n')
	b.WriteString(d.Generated)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", ruleWidth))
	b.WriteByte('\n')
	for _, s := range d.Sections {
		b.WriteByte('\n')
		b.WriteString(s.Heading)
		b.WriteByte('\n')
		for _, line := range s.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func safeNum(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func safeStr(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// filenameSegment keeps letters, digits, spaces, '-' and '_' so the name
// cannot introduce path separators or dot segments.
func filenameSegment(name string) string {
	seg := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == ' ', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(name))
	if seg == "" {
		return "-"
	}
	return seg
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
