package quote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultNotifyTimeout = 30 * time.Second

// Service implements the quote lifecycle on top of a Store.
type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger

	now           func() time.Time
	newID         func() (string, error)
	notifyTimeout time.Duration

	wg sync.WaitGroup
}

// Option customizes a Service.
type Option func(*Service)

// WithNotifier sets the notifier fired after each successful Create.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides quote id generation.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) { s.newID = newID }
}

// WithNotifyTimeout bounds each background notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) { s.notifyTimeout = d }
}

// NewService returns a Service persisting to store.
func NewService(store Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:         store,
		logger:        logger,
		now:           time.Now,
		newID:         newUUIDv7,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create validates d, stores the resulting quote and fires the notifier in
// the background. Nothing is stored when validation fails.
func (s *Service) Create(ctx context.Context, d Draft) (Quote, error) {
	if err := d.Validate(); err != nil {
		return Quote{}, err
	}

	id, err := s.newID()
	if err != nil {
		return Quote{}, fmt.Errorf("generate quote id: %w", err)
	}

	q := Quote{
		ID:        id,
		CreatedAt: s.now().UTC(),
		Customer: Customer{
			Name:    strings.TrimSpace(d.Customer.Name),
			Email:   strings.TrimSpace(d.Customer.Email),
			Phone:   strings.TrimSpace(d.Customer.Phone),
			Company: strings.TrimSpace(d.Customer.Company),
		},
		SalmonType: strings.TrimSpace(d.SalmonType),
		Notes:      d.Notes,
		Input:      d.Input,
		Result:     d.Result,
	}

	if err := s.store.Insert(ctx, q); err != nil {
		return Quote{}, err
	}

	s.logger.Info("quote created",
		zap.String("quote_id", q.ID),
		zap.String("customer", q.Customer.Name),
		zap.String("processing_option", q.Result.ProcessingOptionID),
		zap.Float64("final_price_per_lb", q.Result.FinalPricePerLb))

	s.notify(ctx, q)
	return q, nil
}

func (s *Service) notify(ctx context.Context, q Quote) {
	if s.notifier == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.QuoteCreated(nctx, q); err != nil {
			s.logger.Warn("quote notification failed",
				zap.String("quote_id", q.ID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Get returns the quote stored under id.
func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	return s.store.Get(ctx, id)
}

// List returns all quotes, newest first.
func (s *Service) List(ctx context.Context) ([]Quote, error) {
	return s.store.List(ctx)
}

// Delete removes the quote with id. Deleting a missing quote is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
