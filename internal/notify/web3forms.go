package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/reefnet/wholesale/internal/quote"
)

// DefaultEndpoint is the public web3forms submission URL.
const DefaultEndpoint = "https://api.web3forms.com/submit"

// Config holds the form-relay credentials and retry bounds.
type Config struct {
	Endpoint      string
	AccessKey     string
	To            string
	Timeout       time.Duration
	MaxElapsed    time.Duration
	RetryInterval time.Duration
}

// Message is the JSON body accepted by the form relay.
type Message struct {
	AccessKey string `json:"access_key"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Web3Forms delivers notifications through a web3forms-compatible endpoint.
type Web3Forms struct {
	httpClient *resty.Client
	cfg        Config
	logger     *zap.Logger
}

var _ quote.Notifier = (*Web3Forms)(nil)

// ErrDisabled is returned by New when no access key is configured.
var ErrDisabled = errors.New("notifications disabled: no access key")

// New builds a Web3Forms notifier.
func New(cfg Config, logger *zap.Logger) (*Web3Forms, error) {
	if cfg.AccessKey == "" {
		return nil, ErrDisabled
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = time.Minute
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Web3Forms{httpClient: client, cfg: cfg, logger: logger}, nil
}

// Send posts msg, retrying transient failures with exponential backoff.
func (w *Web3Forms) Send(ctx context.Context, msg Message) error {
	msg.AccessKey = w.cfg.AccessKey
	if msg.To == "" {
		msg.To = w.cfg.To
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.cfg.RetryInterval
	policy.MaxElapsedTime = w.cfg.MaxElapsed

	return backoff.RetryNotify(
		func() error { return w.post(ctx, msg) },
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			w.logger.Warn("notification delivery failed, retrying",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
}

func (w *Web3Forms) post(ctx context.Context, msg Message) error {
	result := new(apiResponse)

	resp, err := w.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(result).
		SetError(result).
		Post(w.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	code := resp.StatusCode()
	if code >= http.StatusBadRequest {
		err := fmt.Errorf("notification relay error: status=%d, message=%s", code, result.Message)
		if code < http.StatusInternalServerError && code != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}
	return nil
}

// QuoteCreated announces a newly saved quote.
func (w *Web3Forms) QuoteCreated(ctx context.Context, q quote.Quote) error {
	return w.Send(ctx, QuoteMessage(q))
}

// QuoteMessage builds the subject and body announcing q.
func QuoteMessage(q quote.Quote) Message {
	var b strings.Builder
	b.WriteString("New Reefnet Salmon Quote\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", q.Customer.Name)
	fmt.Fprintf(&b, "Email: %s\n", orDefault(q.Customer.Email, "Not provided"))
	fmt.Fprintf(&b, "Phone: %s\n", orDefault(q.Customer.Phone, "Not provided"))
	fmt.Fprintf(&b, "Company: %s\n", orDefault(q.Customer.Company, "Not provided"))
	fmt.Fprintf(&b, "Salmon Type: %s\n", orDefault(q.SalmonType, "Not specified"))
	fmt.Fprintf(&b, "Processing: %s\n", q.Result.ProcessingOptionID)
	fmt.Fprintf(&b, "Processed Weight: %.0f lbs\n", q.Input.ProcessedWeight)
	fmt.Fprintf(&b, "Final Price: $%.2f/lb\n", q.Result.FinalPricePerLb)
	fmt.Fprintf(&b, "Extended Value: $%.2f\n", q.Result.ExtendedValue)
	fmt.Fprintf(&b, "Notes: %s\n", orDefault(q.Notes, "No additional information"))
	fmt.Fprintf(&b, "\nSubmitted: %s", q.CreatedAt.Format(time.RFC1123))

	return Message{
		Subject: fmt.Sprintf("New Reefnet Salmon Quote for %s", q.Customer.Name),
		Body:    b.String(),
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
