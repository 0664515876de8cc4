package transport

import (
	"context"
	"fmt"

	"chatbot/internal/model"
)

// Sender delivers an outbound message to one channel's recipient
type Sender interface {
	Send(ctx context.Context, recipientID, text string) error
}

// Dispatcher routes outbound messages to the correct channel sender
type Dispatcher struct {
	senders map[model.Channel]Sender
}

// NewDispatcher creates a dispatcher over the given per-channel senders
func NewDispatcher(senders map[model.Channel]Sender) *Dispatcher {
	return &Dispatcher{senders: senders}
}

// Send delivers text to a recipient on the given channel
func (d *Dispatcher) Send(ctx context.Context, channel model.Channel, recipientID, text string) error {
	sender, ok := d.senders[channel]
	if !ok {
		return fmt.Errorf("unsupported channel: %s", channel)
	}
	return sender.Send(ctx, recipientID, text)
}
