package amqp

import (
	"testing"
	"time"
)

func TestNewChangeMessage(t *testing.T) {
	msg := NewChangeMessage("add", 7, 12)

	if msg.Op != "add" {
		t.Errorf("NewChangeMessage() Op = %v, want add", msg.Op)
	}
	if msg.Count != 7 {
		t.Errorf("NewChangeMessage() Count = %v, want 7", msg.Count)
	}
	if msg.Version != 12 {
		t.Errorf("NewChangeMessage() Version = %v, want 12", msg.Version)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewChangeMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewChangeMessage() Timestamp should be recent")
	}
}

func TestChangeMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ChangeMessage{
		Op:        "import",
		Count:     42,
		Version:   3,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ChangeMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ChangeMessageFromJSON() error = %v", err)
	}

	if parsed.Op != msg.Op {
		t.Errorf("Parsed Op = %v, want %v", parsed.Op, msg.Op)
	}
	if parsed.Count != msg.Count {
		t.Errorf("Parsed Count = %v, want %v", parsed.Count, msg.Count)
	}
	if parsed.Version != msg.Version {
		t.Errorf("Parsed Version = %v, want %v", parsed.Version, msg.Version)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestChangeMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"count": "not_a_number"}`)

	if _, err := ChangeMessageFromJSON(invalidJSON); err == nil {
		t.Error("ChangeMessageFromJSON() should fail with invalid JSON")
	}
}
