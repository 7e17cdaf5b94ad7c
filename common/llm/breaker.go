package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wjlee930501/motion-ai-cs/common/metrics"
)

// ErrBreakerOpen is returned without calling the provider while the breaker is open.
var ErrBreakerOpen = errors.New("llm circuit breaker open")

type BreakerConfig struct {
	Name        string
	Timeout     time.Duration // per call
	MaxFailures uint32        // consecutive failures before opening
	OpenTimeout time.Duration // how long the breaker stays open
}

type breakerClient struct {
	inner   Client
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

// WithBreaker bounds every Complete call by cfg.Timeout and stops calling the
// provider after cfg.MaxFailures consecutive failures until OpenTimeout passes.
func WithBreaker(inner Client, cfg BreakerConfig) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	metrics.RecordBreakerState(cfg.Name, gobreaker.StateClosed)

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: providerHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("llm circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
			metrics.RecordBreakerState(name, to)
		},
	}

	return &breakerClient{
		inner:   inner,
		timeout: cfg.Timeout,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// providerHealthy reports whether err leaves the provider counted as up.
// Caller cancellation and rejected requests say nothing about its health;
// timeouts, rate limits, 5xx and transport errors do.
func providerHealthy(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return !IsRetryable(context.Background(), err)
	}
}

func (b *breakerClient) Complete(ctx context.Context, req Request) (*Response, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()
		return b.inner.Complete(callCtx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s", ErrBreakerOpen, b.cb.Name())
		}
		return nil, err
	}
	return out.(*Response), nil
}

func (b *breakerClient) Model() string {
	return b.inner.Model()
}
