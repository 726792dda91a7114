package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Ledger event types carried on the queue.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
)

// LedgerEventMessage is a lightweight notification that a transaction row
// changed. It carries only identifiers; the export worker fetches the full
// row from the database.
type LedgerEventMessage struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	TransactionID int64     `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event with a fresh unique id.
func NewLedgerEventMessage(eventType string, transactionID int64, userID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		EventID:       uuid.NewString(),
		Type:          eventType,
		TransactionID: transactionID,
		UserID:        userID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
