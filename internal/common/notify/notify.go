package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type WebhookMessage struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       int       `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
	Fields      []Field   `json:"fields,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Client posts feed health alerts to a Discord webhook. A client with an
// empty URL is valid and silently drops every message.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SendMessage(msg WebhookMessage) error {
	if c.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook message: %w", err)
	}

	req, err := http.NewRequest("POST", c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed with status: %d", resp.StatusCode)
	}

	return nil
}

// FeedDown reports that a previously healthy feed started failing.
func (c *Client) FeedDown(feed string, err error) error {
	return c.SendMessage(WebhookMessage{
		Embeds: []Embed{{
			Title:       fmt.Sprintf("🚨 %s feed failing", feed),
			Description: err.Error(),
			Color:       0xFF0000,
			Timestamp:   time.Now(),
		}},
	})
}

// FeedRecovered reports that a failing feed completed a cycle again.
func (c *Client) FeedRecovered(feed string) error {
	return c.SendMessage(WebhookMessage{
		Embeds: []Embed{{
			Title:       fmt.Sprintf("✅ %s feed recovered", feed),
			Description: "Feed is publishing fresh predictions again.",
			Color:       0x2ECC71,
			Timestamp:   time.Now(),
		}},
	})
}
