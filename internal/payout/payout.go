// Package payout delivers withdrawn value to its destination.
package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/go-petr/pet-vault/internal/domain"
)

// Sender moves value out of the vault.
type Sender interface {
	Send(ctx context.Context, p domain.Payout) error
}

// ErrRejected is returned when the payout endpoint answers with a non-2xx status.
var ErrRejected = errors.New("payout rejected")

// NopSender accepts every payout without moving anything.
// Used when custody is settled outside of this service.
type NopSender struct{}

// Send always succeeds.
func (NopSender) Send(ctx context.Context, p domain.Payout) error {
	zerolog.Ctx(ctx).Debug().
		Int64("event_id", p.EventID).
		Str("destination", p.Destination).
		Str("amount", p.Amount.String()).
		Msg("payout skipped")

	return nil
}

// Request is the body posted to the payout endpoint.
type Request struct {
	EventID        int64           `json:"event_id"`
	Destination    string          `json:"destination"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey uuid.UUID       `json:"idempotency_key"`
}

// keyNamespace scopes payout idempotency keys.
var keyNamespace = uuid.MustParse("8f0c7a52-5d43-4c1e-9b7e-2a6f4d1c3e90")

// IdempotencyKey returns the key of the withdrawal journaled as eventID.
// It is the same for every attempt to deliver that withdrawal.
func IdempotencyKey(eventID int64) uuid.UUID {
	return uuid.NewSHA1(keyNamespace, []byte(strconv.FormatInt(eventID, 10)))
}

// HTTPSender posts payouts to a remote endpoint.
type HTTPSender struct {
	url    string
	client *http.Client
}

// NewHTTPSender returns HTTPSender posting to url with the given request timeout.
func NewHTTPSender(url string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts a single payout. Any status outside 2xx is a failure.
func (s *HTTPSender) Send(ctx context.Context, p domain.Payout) error {
	l := zerolog.Ctx(ctx)

	req := Request{
		EventID:        p.EventID,
		Destination:    p.Destination,
		Amount:         p.Amount,
		IdempotencyKey: IdempotencyKey(p.EventID),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "encode payout")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build payout request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey.String())

	resp, err := s.client.Do(httpReq)
	if err != nil {
		l.Error().Err(err).Str("idempotency_key", req.IdempotencyKey.String()).Msg("payout request")
		return errors.Wrap(err, "post payout")
	}
	defer resp.Body.Close()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		l.Warn().
			Int("status", resp.StatusCode).
			Str("idempotency_key", req.IdempotencyKey.String()).
			Msg("payout rejected")

		return errors.Wrap(ErrRejected, fmt.Sprintf("status %d", resp.StatusCode))
	}

	l.Info().
		Str("destination", p.Destination).
		Str("amount", p.Amount.String()).
		Str("idempotency_key", req.IdempotencyKey.String()).
		Msg("payout delivered")

	return nil
}

// BreakerSender stops calling a failing Sender until it has had time to recover.
type BreakerSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker
}

// BreakerSettings configures BreakerSender.
type BreakerSettings struct {
	Name string
	// ConsecutiveFailures trips the breaker. Zero means 5.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open. Zero means 60s.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewBreakerSender wraps next in a circuit breaker.
func NewBreakerSender(next Sender, s BreakerSettings) *BreakerSender {
	failures := s.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	logger := s.Logger

	settings := gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("payout breaker state changed")
		},
	}

	return &BreakerSender{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Send calls through to the wrapped Sender unless the breaker is open.
func (b *BreakerSender) Send(ctx context.Context, p domain.Payout) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, p)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("breaker", b.breaker.Name()).Msg("payout short-circuited")
	}

	return err
}

// State reports the breaker state.
func (b *BreakerSender) State() gobreaker.State {
	return b.breaker.State()
}
