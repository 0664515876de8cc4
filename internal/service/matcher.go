package service

import (
	"context"
	"fmt"
	"strings"

	"chatbot/internal/model"
)

const genericVideoText = "🎥 Te comparto un video explicativo sobre nuestros servicios."

// videoDescriptions maps per-video placeholder tokens to short human-readable
// descriptions. Unrecognized placeholders are left verbatim in answers.
var videoDescriptions = map[string]string{
	"${v1}":  "Explicación básica del rastreo satelital.",
	"${v2}":  "Soluciones para particulares.",
	"${v3}":  "Introducción a la aplicación móvil.",
	"${v4}":  "Soluciones para empresas e industrias.",
	"${v5}":  "Monitoreo dedicado para flotas.",
	"${v6}":  "Videovigilancia móvil (VVM).",
	"${v7}":  "Diferenciadores frente a la competencia.",
	"${v8}":  "Accesorios disponibles para el sistema.",
	"${v9}":  "Asistente virtual en cabina.",
	"${v10}": "Control de combustible.",
	"${v11}": "Mantenimientos preventivos.",
	"${v12}": "Cámaras ADAS y DMS para seguridad avanzada.",
	"${v13}": "Soluciones para la cadena de frío.",
	"${v14}": "Beneficios clave de contratar el servicio.",
	"${v15}": "Presentación general de la empresa.",
	"${v16}": "Ejemplos de visualización de cámaras en tiempo real.",
}

// DomainMatcher answers messages from the curated dataset by cosine
// similarity in a TF-IDF feature space. The space is fitted once at
// construction and shared read-only across concurrent requests.
type DomainMatcher struct {
	records    []model.MatchRecord
	vectorizer *Vectorizer
	vectors    [][]float64
	threshold  float64
}

// NewDomainMatcher fits the feature space over the dataset's input patterns.
// An empty dataset yields a matcher that never matches, which pushes the
// cascade to the next stage.
func NewDomainMatcher(records []model.MatchRecord, threshold float64) *DomainMatcher {
	m := &DomainMatcher{
		records:    records,
		vectorizer: NewVectorizer(1000),
		threshold:  threshold,
	}

	if len(records) == 0 {
		return m
	}

	patterns := make([]string, len(records))
	for i, rec := range records {
		patterns[i] = rec.InputPattern
	}
	m.vectorizer.Fit(patterns)

	m.vectors = make([][]float64, len(records))
	for i, pattern := range patterns {
		m.vectors[i] = m.vectorizer.Transform(pattern)
	}
	return m
}

// Name identifies the stage in logs
func (m *DomainMatcher) Name() string { return "domain_matcher" }

// FindBestMatch returns the arg-max dataset record if its similarity reaches
// the configured floor, nil otherwise. Ties keep the first record in dataset
// order.
func (m *DomainMatcher) FindBestMatch(message string) *model.Match {
	if len(m.records) == 0 || !m.vectorizer.Fitted() {
		return nil
	}

	userVec := m.vectorizer.Transform(message)

	bestIdx := -1
	bestScore := 0.0
	for i, vec := range m.vectors {
		score := Cosine(userVec, vec)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < m.threshold {
		return nil
	}
	return &model.Match{Record: m.records[bestIdx], Similarity: bestScore}
}

// Attempt implements the resolver stage contract. A nil result means clean
// no-match, not low confidence.
func (m *DomainMatcher) Attempt(ctx context.Context, message, userID string, channel model.Channel) (*model.ResolutionResult, error) {
	match := m.FindBestMatch(message)
	if match == nil {
		return nil, nil
	}

	response := expandVideoPlaceholders(match.Record.Answer)
	response = appendSuggestions(response, match.Record.SuggestedResponses)

	return &model.ResolutionResult{
		Response:   response,
		Intent:     match.Record.Intention,
		Confidence: match.Similarity,
	}, nil
}

// Vectorize embeds a message in the fitted feature space for persistence
func (m *DomainMatcher) Vectorize(message string) []float32 {
	vec := m.vectorizer.Transform(message)
	out := make([]float32, len(vec))
	for i, x := range vec {
		out[i] = float32(x)
	}
	return out
}

// expandVideoPlaceholders replaces the generic ${video} marker and specific
// per-video tokens with their descriptions
func expandVideoPlaceholders(answer string) string {
	answer = strings.ReplaceAll(answer, "${video}", genericVideoText)
	for token, description := range videoDescriptions {
		if strings.Contains(answer, token) {
			answer = strings.ReplaceAll(answer, token, "🎥 "+description)
		}
	}
	return answer
}

// appendSuggestions adds up to 4 suggested responses as a numbered list
func appendSuggestions(response string, suggestions []string) string {
	if len(suggestions) == 0 {
		return response
	}
	if len(suggestions) > 4 {
		suggestions = suggestions[:4]
	}

	var b strings.Builder
	b.WriteString(response)
	b.WriteString("\n\nOpciones disponibles:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, suggestion)
	}
	return b.String()
}
