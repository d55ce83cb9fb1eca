package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service posts signed payloads to a single endpoint
type Service struct {
	url    string
	secret string
	client *http.Client
}

func NewService(url, secret string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *Service) Send(ctx context.Context, eventType string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Vigia-Event", eventType)
	req.Header.Set("User-Agent", "Vigia-Webhook/1.0")
	if s.secret != "" {
		req.Header.Set("X-Vigia-Signature", Sign(s.secret, time.Now(), payload))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook responded HTTP %d", resp.StatusCode)
	}

	return nil
}
