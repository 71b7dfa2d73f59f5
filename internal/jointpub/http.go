package jointpub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/robocloud/internal/domain/types"
)

// Sender delivers one message to the service.
type Sender interface {
	Send(ctx context.Context, msg types.JointStateMessage) (Result, error)
	Close() error
}

// HTTPSender posts messages to /topics/{topic}.
type HTTPSender struct {
	client  *http.Client
	baseURL string
	url     string
}

// NewHTTPSender creates a sender for baseURL.
func NewHTTPSender(baseURL, topic string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		url:     baseURL + "/topics/" + topic,
	}
}

// Send posts msg and classifies the response.
func (s *HTTPSender) Send(ctx context.Context, msg types.JointStateMessage) (Result, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return ResultFailed, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return ResultFailed, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return ResultFailed, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case StatusAccepted:
		return ResultAccepted, nil
	case StatusOK:
		return ResultDuplicate, nil
	default:
		return ResultFailed, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
}

// CheckHealth verifies the service answers /healthz.
func (s *HTTPSender) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections.
func (s *HTTPSender) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
