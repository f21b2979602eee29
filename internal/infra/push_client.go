package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultExpoPushURL is the Expo push gateway used when no override is
// configured.
const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

type PushMessage struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

type PushClient struct {
	pushURL    string
	httpClient *http.Client
}

func NewPushClient(pushURL string, timeout time.Duration) *PushClient {
	if pushURL == "" {
		pushURL = DefaultExpoPushURL
	}
	return &PushClient{
		pushURL:    pushURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendPush delivers one notification. Best effort: callers log failures and
// move on, a lost push never undoes the status change that triggered it.
func (c *PushClient) SendPush(ctx context.Context, msg PushMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
