// Package mailer sends consultation requests through the SendGrid v3 API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/markdave123-py/NexSupply/internal/core"
	"github.com/markdave123-py/NexSupply/internal/models"
	"github.com/markdave123-py/NexSupply/internal/platform/logger"
)

// ErrNotConfigured means no API key or sender address is set.
var ErrNotConfigured = errors.New("mailer not configured")

type Config struct {
	APIKey     string
	FromEmail  string
	FromName   string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff time.Duration
}

type SendGrid struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

var _ core.Mailer = (*SendGrid)(nil)

// New returns ErrNotConfigured when the key or sender is missing.
func New(log *logger.Logger, cfg Config) (*SendGrid, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &SendGrid{
		log:        log.With("client", "SendGrid"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	ReplyTo          *address          `json:"reply_to,omitempty"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

// HTTPError is a non-2xx answer from SendGrid.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (s *SendGrid) Send(ctx context.Context, msg models.Email) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("sendgrid: recipient required")
	}
	if strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Body) == "" {
		return errors.New("sendgrid: subject and body required")
	}

	wire := mailSendRequest{
		Personalizations: []personalization{{To: []address{{Email: strings.TrimSpace(msg.To)}}}},
		From:             address{Email: s.cfg.FromEmail, Name: s.cfg.FromName},
		Subject:          strings.TrimSpace(msg.Subject),
		Content:          []content{{Type: "text/plain", Value: msg.Body}},
	}
	if r := strings.TrimSpace(msg.ReplyTo); r != "" {
		wire.ReplyTo = &address{Email: r}
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}

	backoff := s.cfg.Backoff
	for attempt := 0; ; attempt++ {
		retryAfter, err := s.doOnce(ctx, body)
		if err == nil {
			return nil
		}

		var he *HTTPError
		retry := !errors.As(err, &he) || he.retryable()
		if !retry || attempt >= s.cfg.MaxRetries || ctx.Err() != nil {
			return err
		}

		wait := backoff
		if retryAfter > 0 {
			wait = retryAfter
		}
		s.log.Warn("sendgrid request retrying", "attempt", attempt+1, "sleep", wait.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
}

func (s *SendGrid) doOnce(ctx context.Context, body []byte) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return retryAfter(resp.Header.Get("Retry-After")), &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return 0, nil
}

// retryAfter reads a Retry-After header in seconds, capped at 10s.
func retryAfter(v string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0
	}
	d := time.Duration(n) * time.Second
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}
