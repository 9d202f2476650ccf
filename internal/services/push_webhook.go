package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type SlackAttachment struct {
	Color     string `json:"color"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Footer    string `json:"footer"`
	Timestamp int64  `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

// GenericWebhookRequest is posted to relays that forward to devices.
type GenericWebhookRequest struct {
	Token  string            `json:"token"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
	SentAt string            `json:"sent_at"`
}

const (
	ColorTeal = 1752220

	WebhookUsername = "Sanjeevni"
)

// WebhookPusher posts notifications to a Slack, Discord or generic JSON
// webhook, picked from the URL.
type WebhookPusher struct {
	URL    string
	Client *http.Client
}

func NewWebhookPusher(url string) *WebhookPusher {
	return &WebhookPusher{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (p *WebhookPusher) Push(ctx context.Context, msg PushMessage) (PushResult, error) {
	now := Now()

	var payload interface{}
	switch {
	case strings.Contains(p.URL, "hooks.slack.com"):
		payload = SlackWebhookRequest{
			Username: WebhookUsername,
			Text:     msg.Title,
			Attachments: []SlackAttachment{{
				Color:     "#1abc9c",
				Title:     msg.Title,
				Text:      msg.Body,
				Footer:    WebhookUsername,
				Timestamp: now.Unix(),
			}},
		}
	case strings.Contains(p.URL, "discord.com/api/webhooks"):
		payload = DiscordWebhookRequest{
			Username: WebhookUsername,
			Embeds: []DiscordEmbed{{
				Title:       msg.Title,
				Description: msg.Body,
				Color:       ColorTeal,
				Timestamp:   now.Format(time.RFC3339),
			}},
		}
	default:
		payload = GenericWebhookRequest{
			Token:  msg.Token,
			Title:  msg.Title,
			Body:   msg.Body,
			Data:   msg.Data,
			SentAt: now.Format(time.RFC3339),
		}
	}

	if err := p.post(ctx, payload); err != nil {
		return PushResult{}, err
	}

	return PushResult{MessageID: fmt.Sprintf("webhook-%d", now.UnixNano())}, nil
}

func (p *WebhookPusher) post(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
