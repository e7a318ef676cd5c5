package amqp

import (
	"testing"
	"time"
)

func TestNewChangeEvent(t *testing.T) {
	event := NewChangeEvent(EntityTransaction, ActionCreated, "abc-123")

	if event.Entity != EntityTransaction {
		t.Errorf("NewChangeEvent() Entity = %v, want %v", event.Entity, EntityTransaction)
	}
	if event.Action != ActionCreated {
		t.Errorf("NewChangeEvent() Action = %v, want %v", event.Action, ActionCreated)
	}
	if event.ID != "abc-123" {
		t.Errorf("NewChangeEvent() ID = %v, want abc-123", event.ID)
	}
	if event.Timestamp.IsZero() {
		t.Error("NewChangeEvent() Timestamp should not be zero")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("NewChangeEvent() Timestamp should be recent")
	}
}

func TestChangeEvent_JSON(t *testing.T) {
	timestamp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	event := &ChangeEvent{
		Entity:    EntityRecurring,
		Action:    ActionDeleted,
		ID:        "r1",
		Timestamp: timestamp,
	}

	jsonBytes, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ChangeEventFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ChangeEventFromJSON() error = %v", err)
	}

	if parsed.Entity != event.Entity {
		t.Errorf("Parsed Entity = %v, want %v", parsed.Entity, event.Entity)
	}
	if parsed.Action != event.Action {
		t.Errorf("Parsed Action = %v, want %v", parsed.Action, event.Action)
	}
	if parsed.ID != event.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, event.ID)
	}
	if !parsed.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, event.Timestamp)
	}
}

func TestChangeEvent_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"entity": 42}`)

	_, err := ChangeEventFromJSON(invalidJSON)
	if err == nil {
		t.Error("ChangeEventFromJSON() should fail with invalid JSON")
	}
}
