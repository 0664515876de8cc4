package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chatbot/internal/model"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp dataset: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTemp(t, `[
		{"input": "horario de atencion", "answer": "L-V 9 a 18", "intention": "informacion"},
		{"input": "precio gps", "answer": "Depende del plan", "intention": "cotizacion", "suggested_responses": ["Plan básico", "Plan flota"]}
	]`)

	records, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].SuggestedResponses[0] != "Plan básico" {
		t.Errorf("suggested responses not preserved: %v", records[1].SuggestedResponses)
	}
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	path := writeTemp(t, `[
		{"input": "", "answer": "sin pregunta"},
		{"input": "sin respuesta", "answer": ""},
		{"input": "valida", "answer": "respuesta valida"}
	]`)

	records, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 valid record, got %d", len(records))
	}
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if records[0].Intention != "general" {
		t.Errorf("missing intention should default to general, got %q", records[0].Intention)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	var loadErr *model.DatasetLoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("expected DatasetLoadError, got %T: %v", err, err)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeTemp(t, `{not json`)

	_, _, err := Load(path)
	var loadErr *model.DatasetLoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("expected DatasetLoadError for invalid JSON, got %T: %v", err, err)
	}
}
