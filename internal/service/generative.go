package service

import (
	"context"
	"fmt"

	"chatbot/internal/config"
	"chatbot/internal/model"
)

// Completer is the boundary to the external text-generation service
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// GenerativeFallback is the last resolver stage: it enriches the user message
// with the brand persona and recent conversation history and calls the
// generative service. Whatever it returns is accepted with a fixed
// confidence of 0.8.
type GenerativeFallback struct {
	completer    Completer
	contexts     ContextStore
	company      *config.CompanyConfig
	historyTurns int
	confidence   float64
}

// NewGenerativeFallback creates the generative fallback stage
func NewGenerativeFallback(completer Completer, contexts ContextStore, company *config.CompanyConfig, historyTurns int, confidence float64) *GenerativeFallback {
	return &GenerativeFallback{
		completer:    completer,
		contexts:     contexts,
		company:      company,
		historyTurns: historyTurns,
		confidence:   confidence,
	}
}

// Name identifies the stage in logs
func (g *GenerativeFallback) Name() string { return "generative_fallback" }

// Attempt builds the system+history+user prompt and calls the service.
// Typed service errors propagate so the resolver can translate them into
// their distinct apology strings.
func (g *GenerativeFallback) Attempt(ctx context.Context, message, userID string, channel model.Channel) (*model.ResolutionResult, error) {
	messages := []ChatMessage{{Role: "system", Content: g.systemPrompt()}}

	for _, turn := range g.contexts.RecentHistory(userID, channel, g.historyTurns) {
		messages = append(messages,
			ChatMessage{Role: "user", Content: turn.Message},
			ChatMessage{Role: "assistant", Content: turn.Response},
		)
	}
	messages = append(messages, ChatMessage{Role: "user", Content: message})

	text, err := g.completer.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	return &model.ResolutionResult{
		Response:   text,
		Intent:     "generative_fallback",
		Confidence: g.confidence,
	}, nil
}

func (g *GenerativeFallback) systemPrompt() string {
	return fmt.Sprintf(`Eres el asistente virtual de %s, una empresa líder en rastreo satelital y seguridad vehicular.

INFORMACIÓN DE LA EMPRESA:
- Servicios: Rastreo GPS satelital, cámaras de seguridad, monitoreo 24/7
- Especialidades: Soluciones para particulares y empresas
- Teléfono: %s
- Email: %s
- Sitio web: %s

PERSONALIDAD:
- Amigable y profesional
- Conocedor de tecnología GPS y seguridad
- Enfocado en ayudar al cliente
- Usa emojis moderadamente
- Responde en español

SERVICIOS PRINCIPALES:
1. GPS Satelital: Rastreo en tiempo real, geocercas, reportes
2. Cámaras de Seguridad: Grabación en nube, visión nocturna, acceso remoto
3. Monitoreo 24/7: Centro de control dedicado
4. Soluciones Empresariales: Gestión de flotas, optimización de rutas

INSTRUCCIONES:
- Si preguntan por precios, solicita detalles (tipo de vehículo, cantidad, uso)
- Menciona beneficios específicos del servicio
- Deriva a cotización cuando sea apropiado
- Mantén respuestas concisas pero completas`,
		g.company.Name, g.company.SupportPhone, g.company.SupportEmail, g.company.Website)
}
