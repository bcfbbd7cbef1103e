package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"vitalog/tracker/defs"
)

// Notifier posts alerts to an external receiver.
type Notifier interface {
	Notify(ctx context.Context, al defs.Alert) error
}

type Client struct {
	client *http.Client
	logger *zap.Logger
	url    string
}

func New(url string, logger *zap.Logger) *Client {
	return &Client{
		client: &http.Client{},
		logger: logger,
		url:    url,
	}
}

// Notify delivers the alert as a JSON POST to the configured receiver.
func (c *Client) Notify(ctx context.Context, al defs.Alert) error {
	b, err := json.Marshal(al)
	if err != nil {
		return fmt.Errorf("unable to marshal alert: %w", err)
	}

	c.logger.Debug("posting alert to webhook",
		zap.ByteString("request", b),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to post alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook rejected alert: %s", resp.Status)
	}

	c.logger.Debug("alert delivered",
		zap.String("label", al.Label),
	)

	return nil
}
