package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage announces that the transaction collection changed.
// It carries the operation, the collection size and the state version;
// consumers reload the collection from storage rather than trusting a payload.
type ChangeMessage struct {
	Op        string    `json:"op"`
	Count     int       `json:"count"`
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message for the given operation
func NewChangeMessage(op string, count int, version uint64) *ChangeMessage {
	return &ChangeMessage{
		Op:        op,
		Count:     count,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
