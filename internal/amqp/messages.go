package amqp

import (
	"encoding/json"
	"time"

	"budsjett/internal/core"
)

// Change reasons carried on MonthChanged messages.
const (
	ReasonTransaction = "transaction"
	ReasonBudget      = "budget"
	ReasonTemplate    = "template"
	ReasonStructure   = "structure"
)

// MonthChangedMessage tells the report worker that some input of a
// month's report changed. It carries only the month and the reason; the
// worker reloads the snapshot from the database.
type MonthChangedMessage struct {
	Month     core.MonthKey `json:"month"`
	Reason    string        `json:"reason"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewMonthChangedMessage creates a message for one changed month.
func NewMonthChangedMessage(month core.MonthKey, reason string) *MonthChangedMessage {
	return &MonthChangedMessage{
		Month:     month,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *MonthChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthChangedMessageFromJSON decodes a message from JSON bytes.
func MonthChangedMessageFromJSON(data []byte) (*MonthChangedMessage, error) {
	var msg MonthChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
