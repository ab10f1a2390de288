package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SyncPayload is pushed to the external accounting system for one entity.
type SyncPayload struct {
	EntityType string  `json:"entity_type"`
	EntityID   int64   `json:"entity_id"`
	Message    *string `json:"message,omitempty"`
	Attempt    int     `json:"attempt"`
}

// AccountingClient posts sync payloads to the configured endpoint.
type AccountingClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewAccountingClient(endpoint string) *AccountingClient {
	return &AccountingClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Push delivers payload. Any non-2xx response is an error.
func (c *AccountingClient) Push(ctx context.Context, payload SyncPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("accounting: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("accounting: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("accounting: endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("accounting: endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// SyncPusher delivers one payload to the accounting system.
type SyncPusher interface {
	Push(ctx context.Context, payload SyncPayload) error
}

// DeliverSync pushes payload through breaker. A nil breaker calls through;
// a nil pusher means no endpoint is configured and counts as delivered.
func DeliverSync(ctx context.Context, pusher SyncPusher, breaker *CircuitBreaker, payload SyncPayload) error {
	if pusher == nil {
		return nil
	}
	if breaker == nil {
		return pusher.Push(ctx, payload)
	}
	return breaker.Execute(ctx, func(ctx context.Context) error {
		return pusher.Push(ctx, payload)
	})
}

// FailureMessage is the SyncLog message for a failed delivery: the error,
// followed by the caller's message when there was one.
func FailureMessage(err error, message *string) string {
	if message == nil || *message == "" {
		return err.Error()
	}
	return err.Error() + ": " + *message
}
