package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"chatbot/internal/config"
)

// MessengerSender sends messages via the Facebook Messenger Platform API
type MessengerSender struct {
	cfg        *config.MetaConfig
	httpClient *http.Client
}

// NewMessengerSender creates a Messenger Platform sender
func NewMessengerSender(cfg *config.MetaConfig) *MessengerSender {
	return &MessengerSender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type messengerPayload struct {
	Recipient messengerRecipient `json:"recipient"`
	Message   messengerMessage   `json:"message"`
}

type messengerRecipient struct {
	ID string `json:"id"`
}

type messengerMessage struct {
	Text string `json:"text"`
}

// Send delivers a text message to a Messenger recipient
func (s *MessengerSender) Send(ctx context.Context, recipientID, text string) error {
	if s.cfg.MessengerPageToken == "" {
		return fmt.Errorf("messenger configuration not set")
	}

	body, err := json.Marshal(messengerPayload{
		Recipient: messengerRecipient{ID: recipientID},
		Message:   messengerMessage{Text: text},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/me/messages?access_token=%s", s.cfg.GraphAPIBase, s.cfg.MessengerPageToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("messenger API error %d: %s", resp.StatusCode, string(respBody))
	}

	log.Printf("Messenger message sent to %s", recipientID)
	return nil
}
