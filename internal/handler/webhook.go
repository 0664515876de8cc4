package handler

import (
	"context"
	"log"
	"net/http"

	"chatbot/internal/model"
	"chatbot/internal/service"
	"chatbot/internal/transport"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles Meta webhook verification and inbound messages for
// the WhatsApp and Messenger channels
type WebhookHandler struct {
	resolver    *service.ResponseResolver
	dispatcher  *transport.Dispatcher
	whatsapp    *transport.WhatsAppSender
	verifyToken string
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(resolver *service.ResponseResolver, dispatcher *transport.Dispatcher, whatsapp *transport.WhatsAppSender, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		resolver:    resolver,
		dispatcher:  dispatcher,
		whatsapp:    whatsapp,
		verifyToken: verifyToken,
	}
}

// Verify handles the GET verification handshake shared by both Meta channels
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.String(http.StatusForbidden, "Verification failed")
}

// whatsAppWebhook mirrors the WhatsApp Cloud API webhook payload
type whatsAppWebhook struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ReceiveWhatsApp handles POST /webhook-whatsapp
func (h *WebhookHandler) ReceiveWhatsApp(c *gin.Context) {
	var payload whatsAppWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Text.Body == "" {
					log.Printf("Ignoring non-text WhatsApp message from %s", msg.From)
					continue
				}
				h.process(c.Request.Context(), msg.Text.Body, msg.From, model.ChannelWhatsApp)
			}
		}
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")
}

// messengerWebhook mirrors the Messenger Platform webhook payload
type messengerWebhook struct {
	Entry []struct {
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

// ReceiveMessenger handles POST /webhook-messenger
func (h *WebhookHandler) ReceiveMessenger(c *gin.Context) {
	var payload messengerWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	for _, entry := range payload.Entry {
		for _, event := range entry.Messaging {
			if event.Sender.ID == "" || event.Message.Text == "" {
				continue
			}
			h.process(c.Request.Context(), event.Message.Text, event.Sender.ID, model.ChannelMessenger)
		}
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")
}

// process resolves an inbound message and delivers the reply. When a direct
// WhatsApp send fails, a template message re-engages the recipient.
func (h *WebhookHandler) process(ctx context.Context, message, senderID string, channel model.Channel) {
	result, err := h.resolver.Resolve(ctx, message, senderID, channel)
	if err != nil {
		log.Printf("Failed to resolve message from %s via %s: %v", senderID, channel, err)
		return
	}

	if err := h.dispatcher.Send(ctx, channel, senderID, result.Response); err != nil {
		log.Printf("Failed to send to %s via %s: %v", senderID, channel, err)
		if channel == model.ChannelWhatsApp && h.whatsapp != nil {
			if tmplErr := h.whatsapp.SendTemplate(ctx, senderID); tmplErr != nil {
				log.Printf("Template re-engagement failed for %s: %v", senderID, tmplErr)
			} else {
				log.Printf("Template message sent to %s", senderID)
			}
		}
	}
}
