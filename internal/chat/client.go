// Package chat wraps the external messaging transport used for direct
// messages. The core only needs channel creation and message sending; the
// transport itself is an external collaborator.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the channel-creation + send-message capability the fan-out
// endpoint consumes.
type Client interface {
	CreateDirectChannel(ctx context.Context, memberA, memberB uint) (string, error)
	SendMessage(ctx context.Context, channelID string, senderID uint, text string) error
}

// HTTPClient talks to the chat provider's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPClient creates an HTTPClient for the given provider endpoint.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat API %s returned %d", path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *HTTPClient) CreateDirectChannel(ctx context.Context, memberA, memberB uint) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	body := map[string]any{"type": "direct", "members": []uint{memberA, memberB}}
	if err := c.post(ctx, "/channels", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *HTTPClient) SendMessage(ctx context.Context, channelID string, senderID uint, text string) error {
	body := map[string]any{"sender_id": senderID, "text": text}
	return c.post(ctx, "/channels/"+channelID+"/messages", body, nil)
}
