package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
)

// TransactionEvent announces a change to one expense or income. Consumers
// reload whatever they need from the database.
type TransactionEvent struct {
	MessageID   string    `json:"message_id"`
	Type        string    `json:"type"`
	Kind        string    `json:"kind"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Date        string    `json:"date"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionEvent(eventType core.EntryEvent, e core.Entry) *TransactionEvent {
	return &TransactionEvent{
		MessageID:   uuid.NewString(),
		Type:        string(eventType),
		Kind:        string(e.Kind),
		ID:          e.ID,
		UserID:      e.UserID,
		Date:        e.Date.String(),
		AmountCents: e.Amount.Cents,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and sanity-checks a message body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID <= 0 || msg.ID <= 0 {
		return nil, fmt.Errorf("event %s: missing ids", msg.MessageID)
	}
	if _, err := core.ParseKind(msg.Kind); err != nil {
		return nil, fmt.Errorf("event %s: %w", msg.MessageID, err)
	}
	if !msg.EventType().Valid() {
		return nil, fmt.Errorf("event %s: unknown type %q", msg.MessageID, msg.Type)
	}
	if _, err := msg.Period(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EventType returns the typed event name.
func (m *TransactionEvent) EventType() core.EntryEvent { return core.EntryEvent(m.Type) }

// EntryKind returns the typed transaction kind.
func (m *TransactionEvent) EntryKind() core.TransactionKind { return core.TransactionKind(m.Kind) }

// Period returns the month the event's entry was booked in.
func (m *TransactionEvent) Period() (core.Period, error) {
	d, err := core.ParseDate(m.Date)
	if err != nil || d.IsZero() {
		return core.Period{}, fmt.Errorf("event %s: bad date %q", m.MessageID, m.Date)
	}
	return d.Period(), nil
}
