package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"chatbot/internal/config"
	"chatbot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter captures the prompt and returns a canned completion
type stubCompleter struct {
	received []ChatMessage
	reply    string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	s.received = messages
	return s.reply, s.err
}

func testCompany() *config.CompanyConfig {
	return &config.CompanyConfig{
		Name:         "GPS Control",
		SupportPhone: "+52 55 1234 5678",
		SupportEmail: "soporte@gpscontrol.mx",
		Website:      "https://gpscontrol.mx",
	}
}

func TestGenerativeFallback_Attempt(t *testing.T) {
	completer := &stubCompleter{reply: "Claro, te ayudo con eso."}
	contexts := NewMemoryContextStore(30*time.Minute, 10)
	fallback := NewGenerativeFallback(completer, contexts, testCompany(), 3, 0.8)

	res, err := fallback.Attempt(context.Background(), "necesito algo raro", "user1", model.ChannelWeb)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "Claro, te ayudo con eso.", res.Response)
	assert.Equal(t, "generative_fallback", res.Intent)
	assert.Equal(t, 0.8, res.Confidence)

	require.NotEmpty(t, completer.received)
	assert.Equal(t, "system", completer.received[0].Role)
	assert.True(t, strings.Contains(completer.received[0].Content, "GPS Control"))
	last := completer.received[len(completer.received)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "necesito algo raro", last.Content)
}

func TestGenerativeFallback_IncludesRecentHistory(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	contexts := NewMemoryContextStore(30*time.Minute, 10)
	fallback := NewGenerativeFallback(completer, contexts, testCompany(), 2, 0.8)

	contexts.Update("user1", model.ChannelWeb, "turno 1", "general", "respuesta 1")
	contexts.Update("user1", model.ChannelWeb, "turno 2", "general", "respuesta 2")
	contexts.Update("user1", model.ChannelWeb, "turno 3", "general", "respuesta 3")

	_, err := fallback.Attempt(context.Background(), "turno 4", "user1", model.ChannelWeb)
	require.NoError(t, err)

	// system + 2 history turns (user+assistant each) + current message
	require.Len(t, completer.received, 6)
	assert.Equal(t, "turno 2", completer.received[1].Content)
	assert.Equal(t, "respuesta 2", completer.received[2].Content)
	assert.Equal(t, "turno 3", completer.received[3].Content)
	assert.Equal(t, "respuesta 3", completer.received[4].Content)
}

func TestGenerativeFallback_PropagatesTypedErrors(t *testing.T) {
	completer := &stubCompleter{err: model.ErrRateLimit}
	contexts := NewMemoryContextStore(30*time.Minute, 10)
	fallback := NewGenerativeFallback(completer, contexts, testCompany(), 3, 0.8)

	res, err := fallback.Attempt(context.Background(), "hola", "user1", model.ChannelWeb)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, model.ErrRateLimit)
}
