package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change operations carried by record change messages.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RecordChangeMessage announces that a ledger record changed. It carries
// only the entity name, record id and operation; the worker fetches the
// current record from the store when it exports.
type RecordChangeMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordChangeMessage creates a change message stamped with the current time
func NewRecordChangeMessage(entity, id, op string) *RecordChangeMessage {
	return &RecordChangeMessage{
		Entity:    entity,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// Validate checks the message carries a known operation and an entity name
func (m *RecordChangeMessage) Validate() error {
	if m.Entity == "" {
		return fmt.Errorf("record change message missing entity")
	}
	switch m.Op {
	case OpCreate, OpUpdate, OpDelete:
		return nil
	default:
		return fmt.Errorf("unknown record change op %q", m.Op)
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON creates a message from JSON bytes
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
