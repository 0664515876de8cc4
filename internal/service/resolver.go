package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"chatbot/internal/model"
)

// User-facing apology strings. The resolver never surfaces raw errors or
// stack traces to a channel.
const (
	apologyGeneric        = "Disculpa, tuve un problema técnico. ¿Podrías repetir tu mensaje? 🤔"
	apologyRateLimit      = "Estoy recibiendo muchas consultas. Por favor intenta en unos momentos. 🕒"
	apologyInvalidRequest = "Disculpa, hubo un problema con tu consulta. ¿Podrías reformularla? 🤔"
	apologyService        = "Disculpa, tengo un problema técnico temporal. ¿Podrías intentar de nuevo? ⚠️"
)

// Stage is one unit of the resolution cascade. A nil result with nil error
// means clean no-match; low confidence is returned as data for the resolver
// to judge against the stage's acceptance bar.
type Stage interface {
	Name() string
	Attempt(ctx context.Context, message, userID string, channel model.Channel) (*model.ResolutionResult, error)
}

// StageEntry pairs a stage with its acceptance threshold. Reordering or
// re-thresholding the cascade is a data change, not a code change.
type StageEntry struct {
	Stage       Stage
	AcceptAbove float64
}

// Persistence is the collaborator that records resolved exchanges
type Persistence interface {
	SaveExchange(ctx context.Context, ex *model.Exchange) error
}

// ResponseResolver runs the resolution cascade: domain matcher, intent rules,
// generative fallback — strictly in stage order, short-circuiting on the
// first result above its stage's acceptance bar.
type ResponseResolver struct {
	stages      []StageEntry
	contexts    ContextStore
	persistence Persistence
	vectorize   func(string) []float32
}

// NewResponseResolver creates a resolver over an ordered stage list.
// vectorize may be nil; when set, the message's feature vector is stored
// alongside each exchange.
func NewResponseResolver(stages []StageEntry, contexts ContextStore, persistence Persistence, vectorize func(string) []float32) *ResponseResolver {
	return &ResponseResolver{
		stages:      stages,
		contexts:    contexts,
		persistence: persistence,
		vectorize:   vectorize,
	}
}

// Resolve runs the cascade for one inbound message and returns the final
// result. Malformed arguments are rejected with ErrInvalidInput before the
// cascade runs; every other failure is translated into a fixed apology — no
// error ever escapes to the transport layer.
func (r *ResponseResolver) Resolve(ctx context.Context, message, userID string, channel model.Channel) (result *model.ResolutionResult, err error) {
	if strings.TrimSpace(message) == "" || userID == "" || !channel.Valid() {
		return nil, model.ErrInvalidInput
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Resolver panic for user %s via %s: %v", userID, channel, rec)
			result = errorResult(apologyGeneric)
			err = nil
		}
	}()

	for _, entry := range r.stages {
		res, stageErr := entry.Stage.Attempt(ctx, message, userID, channel)
		if stageErr != nil {
			log.Printf("Stage %s failed for user %s via %s: %v", entry.Stage.Name(), userID, channel, stageErr)
			return errorResult(apologyFor(stageErr)), nil
		}
		if res == nil {
			continue
		}
		if res.Confidence > entry.AcceptAbove {
			log.Printf("Stage %s accepted for user %s via %s (intent=%s confidence=%.2f)",
				entry.Stage.Name(), userID, channel, res.Intent, res.Confidence)
			r.accept(message, userID, channel, res)
			return res, nil
		}
	}

	// Unreachable with the standard cascade: the generative stage either
	// answers at fixed confidence or errors.
	return errorResult(apologyGeneric), nil
}

// accept updates conversation state and persists the exchange. A failed
// write must never block the chat response, so persistence runs async and
// failures are only logged.
func (r *ResponseResolver) accept(message, userID string, channel model.Channel, res *model.ResolutionResult) {
	r.contexts.Update(userID, channel, message, res.Intent, res.Response)

	if r.persistence == nil {
		return
	}

	ex := &model.Exchange{
		UserID:     userID,
		Channel:    string(channel),
		Message:    message,
		Response:   res.Response,
		Intent:     res.Intent,
		Confidence: res.Confidence,
	}
	if r.vectorize != nil {
		ex.MessageVector = r.vectorize(message)
	}

	go func() {
		if err := r.persistence.SaveExchange(context.Background(), ex); err != nil {
			log.Printf("Failed to save exchange for user %s via %s: %v", userID, channel, err)
		}
	}()
}

// apologyFor maps each generative failure kind to its distinct user-facing
// string
func apologyFor(err error) string {
	switch {
	case errors.Is(err, model.ErrRateLimit):
		return apologyRateLimit
	case errors.Is(err, model.ErrInvalidRequest):
		return apologyInvalidRequest
	case errors.Is(err, model.ErrService):
		return apologyService
	}
	return apologyGeneric
}

func errorResult(apology string) *model.ResolutionResult {
	return &model.ResolutionResult{
		Response:   apology,
		Intent:     "error",
		Confidence: 0.0,
	}
}
