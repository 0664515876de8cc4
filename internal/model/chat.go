package model

import "time"

// Channel identifies the transport a message arrived on
type Channel string

const (
	ChannelWeb       Channel = "web"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelMessenger Channel = "messenger"
)

// Valid reports whether the channel is one of the supported transports
func (c Channel) Valid() bool {
	switch c {
	case ChannelWeb, ChannelWhatsApp, ChannelMessenger:
		return true
	}
	return false
}

// ResolutionResult is the uniform output of every resolver stage
type ResolutionResult struct {
	Response   string  `json:"response"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// HistoryEntry is a single turn in a conversation context
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Intent    string    `json:"intent"`
	Response  string    `json:"response"`
}

// ConversationContext holds rolling per-user, per-channel conversation state.
// Owned and mutated exclusively by the context store; accessors hand out copies.
type ConversationContext struct {
	UserID        string            `json:"user_id"`
	Channel       Channel           `json:"channel"`
	CurrentIntent string            `json:"current_intent,omitempty"`
	History       []HistoryEntry    `json:"history"`
	QuoteData     map[string]string `json:"quote_data,omitempty"`
	LastActivity  time.Time         `json:"last_activity"`
	Step          int               `json:"step"`
}

// Exchange is one persisted message/response pair
type Exchange struct {
	ID            int64     `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Channel       string    `db:"channel" json:"channel"`
	Message       string    `db:"message" json:"message"`
	Response      string    `db:"response" json:"response"`
	Intent        string    `db:"intent" json:"intent"`
	Confidence    float64   `db:"confidence" json:"confidence"`
	SessionID     string    `db:"session_id" json:"session_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	MessageVector []float32 `db:"-" json:"-"`
}

// ChatReport aggregates per-user, per-channel interaction counters
type ChatReport struct {
	ID              int64          `db:"id" json:"id"`
	UserID          string         `db:"user_id" json:"user_id"`
	Channel         string         `db:"channel" json:"channel"`
	MessageCount    int            `db:"message_count" json:"message_count"`
	LastInteraction time.Time      `db:"last_interaction" json:"last_interaction"`
	IntentSummary   map[string]int `db:"-" json:"intent_summary,omitempty"`
}

// ChatRequest is the web chat call shape
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	ChatID  string `json:"chat_id,omitempty"`
}

// ChatResponse is returned to the web chat frontend
type ChatResponse struct {
	Response   string  `json:"response"`
	Status     string  `json:"status"`
	ChatID     string  `json:"chat_id"`
	Intent     string  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// StatsResponse is the dashboard statistics payload
type StatsResponse struct {
	TotalConversations int            `json:"total_conversations"`
	TotalUsers         int            `json:"total_users"`
	ConversationsToday int            `json:"conversations_today"`
	TopIntents         map[string]int `json:"top_intents"`
}
