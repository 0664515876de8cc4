package service

import (
	"fmt"
	"testing"
	"time"

	"chatbot/internal/model"
)

func TestMemoryContextStore_GetCreatesFreshContext(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	ctx := store.Get("user1", model.ChannelWeb)
	if ctx.UserID != "user1" || ctx.Channel != model.ChannelWeb {
		t.Errorf("Expected fresh context for (user1, web), got (%s, %s)", ctx.UserID, ctx.Channel)
	}
	if len(ctx.History) != 0 || ctx.Step != 0 {
		t.Errorf("Expected empty history and step 0, got %d entries, step %d", len(ctx.History), ctx.Step)
	}
}

func TestMemoryContextStore_UpdateAppendsHistory(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	store.Update("user1", model.ChannelWeb, "hola", "saludo", "¡Hola!")
	store.Update("user1", model.ChannelWeb, "precio del gps", "cotizacion_gps", "Depende del plan.")

	ctx := store.Get("user1", model.ChannelWeb)
	if len(ctx.History) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(ctx.History))
	}
	if ctx.CurrentIntent != "cotizacion_gps" {
		t.Errorf("Expected current intent cotizacion_gps, got %q", ctx.CurrentIntent)
	}
	if ctx.Step != 2 {
		t.Errorf("Expected step 2, got %d", ctx.Step)
	}
	if ctx.History[0].Message != "hola" || ctx.History[1].Message != "precio del gps" {
		t.Errorf("Expected history in insertion order, got %+v", ctx.History)
	}
}

func TestMemoryContextStore_HistoryBounded(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	for i := 0; i < 15; i++ {
		store.Update("user1", model.ChannelWeb, fmt.Sprintf("mensaje %d", i), "general", "ok")
	}

	ctx := store.Get("user1", model.ChannelWeb)
	if len(ctx.History) != 10 {
		t.Fatalf("Expected history capped at 10, got %d", len(ctx.History))
	}
	// Oldest entries evicted first
	if ctx.History[0].Message != "mensaje 5" {
		t.Errorf("Expected oldest surviving entry to be mensaje 5, got %q", ctx.History[0].Message)
	}
	if ctx.History[9].Message != "mensaje 14" {
		t.Errorf("Expected newest entry to be mensaje 14, got %q", ctx.History[9].Message)
	}
	if ctx.Step != 15 {
		t.Errorf("Expected step to keep counting past the cap, got %d", ctx.Step)
	}
}

func TestMemoryContextStore_ExpiryResetsContext(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Update("user1", model.ChannelWhatsApp, "hola", "saludo", "¡Hola!")
	store.MergeQuoteData("user1", model.ChannelWhatsApp, map[string]string{"vehiculo": "moto"})

	// Just under the timeout: context survives
	current = current.Add(29 * time.Minute)
	ctx := store.Get("user1", model.ChannelWhatsApp)
	if len(ctx.History) != 1 {
		t.Fatalf("Expected context to survive under the timeout, got %d entries", len(ctx.History))
	}

	// Get refreshed nothing; past the timeout the context resets in place
	current = current.Add(2 * time.Minute)
	ctx = store.Get("user1", model.ChannelWhatsApp)
	if len(ctx.History) != 0 {
		t.Errorf("Expected expired context to reset, got %d history entries", len(ctx.History))
	}
	if len(ctx.QuoteData) != 0 {
		t.Errorf("Expected quote data cleared on expiry, got %v", ctx.QuoteData)
	}
	if ctx.CurrentIntent != "" || ctx.Step != 0 {
		t.Errorf("Expected intent and step cleared, got (%q, %d)", ctx.CurrentIntent, ctx.Step)
	}
}

func TestMemoryContextStore_ChannelsAreIsolated(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	store.Update("user1", model.ChannelWeb, "hola", "saludo", "¡Hola!")

	if ctx := store.Get("user1", model.ChannelWhatsApp); len(ctx.History) != 0 {
		t.Errorf("Expected whatsapp context to be independent, got %d entries", len(ctx.History))
	}
	if ctx := store.Get("user2", model.ChannelWeb); len(ctx.History) != 0 {
		t.Errorf("Expected other user's context to be independent, got %d entries", len(ctx.History))
	}
}

func TestMemoryContextStore_MergeQuoteData(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	store.MergeQuoteData("user1", model.ChannelWeb, map[string]string{"vehiculo": "auto"})
	store.MergeQuoteData("user1", model.ChannelWeb, map[string]string{"cantidad": "3", "vehiculo": "camion"})

	ctx := store.Get("user1", model.ChannelWeb)
	if ctx.QuoteData["vehiculo"] != "camion" {
		t.Errorf("Expected later merge to overwrite, got %q", ctx.QuoteData["vehiculo"])
	}
	if ctx.QuoteData["cantidad"] != "3" {
		t.Errorf("Expected merged key cantidad=3, got %q", ctx.QuoteData["cantidad"])
	}
}

func TestMemoryContextStore_QuoteInProgress(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	if store.QuoteInProgress("user1", model.ChannelWeb) {
		t.Error("Expected no quote in progress for a fresh context")
	}

	store.Update("user1", model.ChannelWeb, "quiero cotizar gps", "cotizacion_gps", "¿Qué vehículo?")
	if store.QuoteInProgress("user1", model.ChannelWeb) {
		t.Error("Expected no quote in progress before any data is collected")
	}

	store.MergeQuoteData("user1", model.ChannelWeb, map[string]string{"vehiculo": "auto"})
	if !store.QuoteInProgress("user1", model.ChannelWeb) {
		t.Error("Expected quote in progress with intent and partial data")
	}
}

func TestMemoryContextStore_RecentHistory(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	for i := 0; i < 5; i++ {
		store.Update("user1", model.ChannelWeb, fmt.Sprintf("mensaje %d", i), "general", "ok")
	}

	recent := store.RecentHistory("user1", model.ChannelWeb, 3)
	if len(recent) != 3 {
		t.Fatalf("Expected 3 recent turns, got %d", len(recent))
	}
	if recent[0].Message != "mensaje 2" || recent[2].Message != "mensaje 4" {
		t.Errorf("Expected the 3 most recent turns oldest-first, got %+v", recent)
	}
}

func TestMemoryContextStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryContextStore(30*time.Minute, 10)

	store.Update("user1", model.ChannelWeb, "hola", "saludo", "¡Hola!")

	ctx := store.Get("user1", model.ChannelWeb)
	ctx.History[0].Message = "mutado"
	ctx.QuoteData["clave"] = "valor"

	again := store.Get("user1", model.ChannelWeb)
	if again.History[0].Message != "hola" {
		t.Error("Expected store state to be isolated from returned copies")
	}
	if _, ok := again.QuoteData["clave"]; ok {
		t.Error("Expected quote data to be isolated from returned copies")
	}
}
