package notifier

import (
	"agent-performance/errors"
	"agent-performance/metrics"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single webhook delivery.
const DefaultTimeout = 10 * time.Second

// rejectionMarker appears in the body of otherwise successful webhook responses
// when the workspace behind the URL no longer exists.
const rejectionMarker = "no_team"

// Slack posts messages to an incoming-webhook URL.
type Slack struct {
	webhookURL string
	httpClient *http.Client
	logger     zerolog.Logger
}

type payload struct {
	Text string `json:"text"`
}

// NewSlack returns a notifier for webhookURL. An empty URL disables delivery.
func NewSlack(webhookURL string, timeout time.Duration, logger zerolog.Logger) *Slack {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Slack{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "notifier").Logger(),
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *Slack) Enabled() bool {
	return s.webhookURL != ""
}

// Send delivers msg. It returns a *errors.DeliveryError when the endpoint is
// unreachable, answers with a non-2xx status, or embeds a rejection in the body.
func (s *Slack) Send(ctx context.Context, msg string) error {
	if !s.Enabled() {
		s.logger.Info().Msg("slack webhook not provided; skipping notification")
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	body, err := json.Marshal(payload{Text: msg})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return &errors.DeliveryError{Err: fmt.Errorf("%w: %v", errors.ErrDeliveryFailed, err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return &errors.DeliveryError{Err: fmt.Errorf("%w: %v", errors.ErrDeliveryFailed, err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	text := string(respBody)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || strings.Contains(strings.ToLower(text), rejectionMarker) {
		metrics.NotificationsTotal.WithLabelValues("rejected").Inc()
		return &errors.DeliveryError{
			StatusCode: resp.StatusCode,
			Body:       text,
			Err:        errors.ErrDeliveryRejected,
		}
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	s.logger.Info().Int("status", resp.StatusCode).Msg("slack notification sent")
	return nil
}
