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

// WhatsAppSender sends messages via the WhatsApp Cloud API
type WhatsAppSender struct {
	cfg        *config.MetaConfig
	httpClient *http.Client
}

// NewWhatsAppSender creates a WhatsApp Cloud API sender
func NewWhatsAppSender(cfg *config.MetaConfig) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type whatsAppTextPayload struct {
	MessagingProduct string            `json:"messaging_product"`
	To               string            `json:"to"`
	Type             string            `json:"type"`
	Text             *whatsAppText     `json:"text,omitempty"`
	Template         *whatsAppTemplate `json:"template,omitempty"`
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppTemplate struct {
	Name     string           `json:"name"`
	Language whatsAppLanguage `json:"language"`
}

type whatsAppLanguage struct {
	Code string `json:"code"`
}

// Send delivers a text message to a WhatsApp recipient
func (s *WhatsAppSender) Send(ctx context.Context, recipientID, text string) error {
	payload := whatsAppTextPayload{
		MessagingProduct: "whatsapp",
		To:               recipientID,
		Type:             "text",
		Text:             &whatsAppText{Body: text},
	}
	return s.post(ctx, recipientID, payload)
}

// SendTemplate delivers a template message, used to re-engage recipients
// outside the 24-hour messaging window when a direct send fails
func (s *WhatsAppSender) SendTemplate(ctx context.Context, recipientID string) error {
	payload := whatsAppTextPayload{
		MessagingProduct: "whatsapp",
		To:               recipientID,
		Type:             "template",
		Template: &whatsAppTemplate{
			Name:     s.cfg.TemplateName,
			Language: whatsAppLanguage{Code: "en_US"},
		},
	}
	return s.post(ctx, recipientID, payload)
}

func (s *WhatsAppSender) post(ctx context.Context, recipientID string, payload whatsAppTextPayload) error {
	if s.cfg.WhatsAppAccessToken == "" || s.cfg.WhatsAppPhoneID == "" {
		return fmt.Errorf("whatsapp configuration not set")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.cfg.GraphAPIBase, s.cfg.WhatsAppPhoneID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.WhatsAppAccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		logWhatsAppError(recipientID, respBody)
		return fmt.Errorf("whatsapp API error %d: %s", resp.StatusCode, string(respBody))
	}

	log.Printf("WhatsApp message sent to %s", recipientID)
	return nil
}

// logWhatsAppError surfaces actionable hints for well-known Cloud API error
// codes
func logWhatsAppError(recipientID string, body []byte) {
	var parsed struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return
	}

	switch parsed.Error.Code {
	case 131030:
		log.Printf("WhatsApp: %s is not in the allowed recipients list", recipientID)
	case 131047:
		log.Printf("WhatsApp: %s is outside the 24h window, template re-engagement needed", recipientID)
	case 100:
		log.Printf("WhatsApp: check access token or phone number ID")
	}
}
