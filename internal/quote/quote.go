package quote

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/reefnet/wholesale/internal/pricing"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("quote validation failed")
	// ErrNotFound is returned when a quote id does not exist.
	ErrNotFound = errors.New("quote not found")
)

// Customer identifies who a quote is for. Only Name is required.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// Draft is everything needed to create a quote.
type Draft struct {
	Input      pricing.Input  `json:"input"`
	Result     pricing.Result `json:"result"`
	Customer   Customer       `json:"customer"`
	SalmonType string         `json:"salmon_type,omitempty"`
	Notes      string         `json:"notes,omitempty"`
}

// Quote is an immutable, persisted price quote.
type Quote struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Customer   Customer       `json:"customer"`
	SalmonType string         `json:"salmon_type,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	Input      pricing.Input  `json:"input"`
	Result     pricing.Result `json:"result"`
}

// ValidationError lists the required fields a draft is missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate checks the fields a quote cannot be saved without.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Customer.Name) == "" {
		missing = append(missing, "customer name")
	}
	if !positive(d.Input.ProcessedWeight) && !positive(d.Input.RoundWeight) {
		missing = append(missing, "weight")
	}
	if !positive(d.Input.GroundsPrice) {
		missing = append(missing, "grounds price")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// positive reports whether v is a finite number above zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Store persists quotes.
type Store interface {
	Insert(ctx context.Context, q Quote) error
	Get(ctx context.Context, id string) (Quote, error)
	List(ctx context.Context) ([]Quote, error)
	Delete(ctx context.Context, id string) error
}

// Notifier tells a human about a newly created quote.
type Notifier interface {
	QuoteCreated(ctx context.Context, q Quote) error
}
