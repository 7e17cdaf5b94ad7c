package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/common/metrics"
	"github.com/wjlee930501/motion-ai-cs/internal/model"
)

const (
	slaExcerptRunes    = 100
	urgentExcerptRunes = 200
	maxErrorBody       = 500
)

type Config struct {
	WebhookURL   string
	DashboardURL string
	Timeout      time.Duration
	// Consecutive failed deliveries before the webhook is left alone for OpenTimeout.
	MaxFailures uint32
	OpenTimeout time.Duration
	HTTPClient  *http.Client
}

// SlackWebhook posts Block Kit messages to an incoming webhook.
type SlackWebhook struct {
	url          string
	dashboardURL string
	client       *http.Client
	cb           *gobreaker.CircuitBreaker
	logger       *slog.Logger
}

var _ Dispatcher = (*SlackWebhook)(nil)

func NewSlackWebhook(cfg Config, logger *slog.Logger) *SlackWebhook {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	const name = "slack_webhook"
	metrics.RecordBreakerState(name, gobreaker.StateClosed)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("alert circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
			metrics.RecordBreakerState(name, to)
		},
	})

	return &SlackWebhook{
		url:          cfg.WebhookURL,
		dashboardURL: strings.TrimRight(cfg.DashboardURL, "/"),
		client:       client,
		cb:           cb,
		logger:       logger,
	}
}

func (s *SlackWebhook) SendSLABreach(ctx context.Context, a SLABreach) Delivery {
	payload := slaBreachBlocks(a, s.ticketURL(a.TicketID))
	d := s.post(ctx, payload)
	metrics.RecordAlert(string(model.AlertKindSLABreach), d.Delivered)
	return d
}

func (s *SlackWebhook) SendUrgentTicket(ctx context.Context, a UrgentTicket) Delivery {
	payload := urgentTicketBlocks(a, s.ticketURL(a.TicketID))
	d := s.post(ctx, payload)
	metrics.RecordAlert(string(model.AlertKindUrgentTicket), d.Delivered)
	return d
}

// ticketURL is the dashboard deep link for a ticket.
func (s *SlackWebhook) ticketURL(id int64) string {
	return s.dashboardURL + "/tickets/" + strconv.FormatInt(id, 10)
}

// errStatus marks a non-2xx response so the breaker counts it as a failure
// while the status code still reaches the alert log.
type errStatus struct {
	code int
	body string
}

func (e *errStatus) Error() string {
	if e.body == "" {
		return fmt.Sprintf("webhook returned status %d", e.code)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.code, e.body)
}

func (s *SlackWebhook) post(ctx context.Context, payload any) Delivery {
	if s.url == "" {
		return Delivery{Err: ErrNotConfigured}
	}

	sc := logger.StartSpan(ctx, "alert.slack_webhook")
	defer sc.End()
	ctx = sc.Context()

	body, err := json.Marshal(payload)
	if err != nil {
		return Delivery{Err: fmt.Errorf("encoding payload: %w", err)}
	}

	out, err := s.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return resp.StatusCode, &errStatus{code: resp.StatusCode, body: strings.TrimSpace(string(text))}
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	})

	if err != nil {
		sc.RecordError(err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Delivery{Err: ErrBreakerOpen}
		}
		var es *errStatus
		if errors.As(err, &es) {
			code := es.code
			s.logger.WarnContext(ctx, "alert webhook rejected", "status", code)
			return Delivery{StatusCode: &code, Err: err}
		}
		s.logger.WarnContext(ctx, "alert webhook failed", "error", err)
		return Delivery{Err: err}
	}

	code := out.(int)
	return Delivery{Delivered: true, StatusCode: &code}
}
