package amqp

import (
	"testing"
	"time"
)

func TestMonthChangedMessageJSON(t *testing.T) {
	msg := NewMonthChangedMessage("2025-03", ReasonBudget)
	if msg.Timestamp.IsZero() {
		t.Fatalf("message should be timestamped")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := MonthChangedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Month != "2025-03" || decoded.Reason != ReasonBudget {
		t.Fatalf("round trip = %+v", decoded)
	}
	if !decoded.Timestamp.Truncate(time.Second).Equal(msg.Timestamp.Truncate(time.Second)) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestMonthChangedMessageInvalidJSON(t *testing.T) {
	if _, err := MonthChangedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
