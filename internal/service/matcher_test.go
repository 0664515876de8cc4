package service

import (
	"context"
	"strings"
	"testing"

	"chatbot/internal/model"
)

func testRecords() []model.MatchRecord {
	return []model.MatchRecord{
		{
			InputPattern: "cuanto cuesta el rastreo gps",
			Answer:       "El precio depende del plan que elijas.",
			Intention:    "cotizacion_gps",
		},
		{
			InputPattern: "horario de atencion",
			Answer:       "Atendemos de lunes a viernes de 9:00 a 18:00.",
			Intention:    "informacion_servicios",
		},
		{
			InputPattern: "como funcionan las camaras",
			Answer:       "Mira este video: ${video}",
			Intention:    "cotizacion_camaras",
		},
	}
}

func TestDomainMatcher_FindBestMatch(t *testing.T) {
	m := NewDomainMatcher(testRecords(), 0.3)

	tests := []struct {
		name          string
		message       string
		wantIntention string
		wantNil       bool
	}{
		{
			name:          "exact pattern",
			message:       "horario de atencion",
			wantIntention: "informacion_servicios",
		},
		{
			name:          "close variant",
			message:       "cual es el horario de atencion",
			wantIntention: "informacion_servicios",
		},
		{
			name:    "unrelated message",
			message: "quiero pedir una pizza grande",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := m.FindBestMatch(tt.message)
			if tt.wantNil {
				if match != nil {
					t.Fatalf("Expected no match, got %q (%.2f)", match.Record.Intention, match.Similarity)
				}
				return
			}
			if match == nil {
				t.Fatal("Expected a match, got nil")
			}
			if match.Record.Intention != tt.wantIntention {
				t.Errorf("Expected intention %q, got %q", tt.wantIntention, match.Record.Intention)
			}
			if match.Similarity < 0.3 {
				t.Errorf("Expected similarity >= threshold, got %.4f", match.Similarity)
			}
		})
	}
}

func TestDomainMatcher_ExactMatchSimilarity(t *testing.T) {
	m := NewDomainMatcher(testRecords(), 0.3)

	match := m.FindBestMatch("horario de atencion")
	if match == nil {
		t.Fatal("Expected a match, got nil")
	}
	if match.Similarity < 0.99 {
		t.Errorf("Expected near-perfect similarity for the exact pattern, got %.4f", match.Similarity)
	}
}

func TestDomainMatcher_TieKeepsFirstRecord(t *testing.T) {
	records := []model.MatchRecord{
		{InputPattern: "horario de atencion", Answer: "primera", Intention: "a"},
		{InputPattern: "horario de atencion", Answer: "segunda", Intention: "b"},
	}
	m := NewDomainMatcher(records, 0.3)

	match := m.FindBestMatch("horario de atencion")
	if match == nil {
		t.Fatal("Expected a match, got nil")
	}
	if match.Record.Answer != "primera" {
		t.Errorf("Expected tie to keep the first record, got %q", match.Record.Answer)
	}
}

func TestDomainMatcher_EmptyDataset(t *testing.T) {
	m := NewDomainMatcher(nil, 0.3)

	if match := m.FindBestMatch("hola"); match != nil {
		t.Errorf("Expected empty dataset to never match, got %v", match)
	}

	res, err := m.Attempt(context.Background(), "hola", "user1", model.ChannelWeb)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res != nil {
		t.Errorf("Expected nil result from empty-dataset matcher, got %v", res)
	}
}

func TestDomainMatcher_AttemptExpandsVideoPlaceholder(t *testing.T) {
	m := NewDomainMatcher(testRecords(), 0.3)

	res, err := m.Attempt(context.Background(), "como funcionan las camaras", "user1", model.ChannelWeb)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res == nil {
		t.Fatal("Expected a result, got nil")
	}
	if strings.Contains(res.Response, "${video}") {
		t.Errorf("Expected ${video} placeholder to be expanded, got %q", res.Response)
	}
	if !strings.Contains(res.Response, genericVideoText) {
		t.Errorf("Expected generic video text in response, got %q", res.Response)
	}
}

func TestExpandVideoPlaceholders_SpecificTokens(t *testing.T) {
	got := expandVideoPlaceholders("Aqui tienes: ${v1} y tambien ${v16}")
	if strings.Contains(got, "${v1}") || strings.Contains(got, "${v16}") {
		t.Errorf("Expected specific tokens to be expanded, got %q", got)
	}
	if !strings.Contains(got, videoDescriptions["${v1}"]) {
		t.Errorf("Expected description for ${v1} in %q", got)
	}

	// Unknown tokens stay verbatim
	got = expandVideoPlaceholders("ver ${v99}")
	if !strings.Contains(got, "${v99}") {
		t.Errorf("Expected unknown token to stay verbatim, got %q", got)
	}
}

func TestAppendSuggestions(t *testing.T) {
	tests := []struct {
		name        string
		suggestions []string
		wantLines   []string
		wantAbsent  []string
	}{
		{
			name:        "no suggestions",
			suggestions: nil,
			wantAbsent:  []string{"Opciones disponibles:"},
		},
		{
			name:        "two suggestions",
			suggestions: []string{"Ver precios", "Agendar cita"},
			wantLines:   []string{"Opciones disponibles:", "1. Ver precios", "2. Agendar cita"},
		},
		{
			name:        "capped at four",
			suggestions: []string{"a", "b", "c", "d", "e"},
			wantLines:   []string{"4. d"},
			wantAbsent:  []string{"5. e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := appendSuggestions("respuesta", tt.suggestions)
			for _, line := range tt.wantLines {
				if !strings.Contains(got, line) {
					t.Errorf("Expected %q in %q", line, got)
				}
			}
			for _, line := range tt.wantAbsent {
				if strings.Contains(got, line) {
					t.Errorf("Did not expect %q in %q", line, got)
				}
			}
		})
	}
}

func TestDomainMatcher_Vectorize(t *testing.T) {
	m := NewDomainMatcher(testRecords(), 0.3)

	vec := m.Vectorize("horario de atencion")
	if len(vec) != m.vectorizer.Dimensions() {
		t.Fatalf("Expected vector of dimension %d, got %d", m.vectorizer.Dimensions(), len(vec))
	}

	var nonZero bool
	for _, x := range vec {
		if x != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("Expected non-zero vector for in-vocabulary message")
	}
}
