package catalog

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownProcessingOption is returned by Lookup when the id is not in the catalog.
var ErrUnknownProcessingOption = errors.New("unknown processing option")

// Option is a processing treatment with its per-pound added cost and yield.
type Option struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	AddedCost    float64 `json:"added_cost"`
	RecoveryRate float64 `json:"recovery_rate"`
}

// Catalog is an immutable, ordered set of processing options.
type Catalog struct {
	options []Option
	byID    map[string]int
}

// New builds a catalog from the given options, preserving their order.
func New(options ...Option) (*Catalog, error) {
	if len(options) == 0 {
		return nil, errors.New("catalog requires at least one processing option")
	}

	c := &Catalog{
		options: make([]Option, 0, len(options)),
		byID:    make(map[string]int, len(options)),
	}
	for _, opt := range options {
		if opt.ID == "" {
			return nil, errors.New("processing option id is required")
		}
		if _, dup := c.byID[opt.ID]; dup {
			return nil, fmt.Errorf("duplicate processing option %q", opt.ID)
		}
		if math.IsNaN(opt.AddedCost) || math.IsInf(opt.AddedCost, 0) || opt.AddedCost < 0 {
			return nil, fmt.Errorf("processing option %q: added cost must be >= 0", opt.ID)
		}
		if math.IsNaN(opt.RecoveryRate) || opt.RecoveryRate <= 0 || opt.RecoveryRate > 1 {
			return nil, fmt.Errorf("processing option %q: recovery rate must be in (0, 1]", opt.ID)
		}
		c.byID[opt.ID] = len(c.options)
		c.options = append(c.options, opt)
	}

	return c, nil
}

// Lookup returns the option registered under id.
func (c *Catalog) Lookup(id string) (Option, error) {
	i, ok := c.byID[id]
	if !ok {
		return Option{}, fmt.Errorf("%w: %q", ErrUnknownProcessingOption, id)
	}
	return c.options[i], nil
}

// LookupOrFirst resolves id and substitutes the first catalog entry when it is
// unknown. The boolean reports whether the substitution happened.
func (c *Catalog) LookupOrFirst(id string) (Option, bool) {
	opt, err := c.Lookup(id)
	if err != nil {
		return c.First(), true
	}
	return opt, false
}

// First returns the catalog's first entry, which doubles as its default.
func (c *Catalog) First() Option {
	return c.options[0]
}

// Options returns a copy of all entries in catalog order.
func (c *Catalog) Options() []Option {
	out := make([]Option, len(c.options))
	copy(out, c.options)
	return out
}

// Len reports the number of entries.
func (c *Catalog) Len() int {
	return len(c.options)
}
