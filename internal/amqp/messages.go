package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"tally/internal/core"
	"tally/internal/tracker"
)

// ChangeMessage is the wire form of a tracker.ChangeEvent.
type ChangeMessage struct {
	Kind        string    `json:"kind"`
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewChangeMessage flattens ev for publishing
func NewChangeMessage(ev tracker.ChangeEvent) *ChangeMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &ChangeMessage{
		Kind:        string(ev.Kind),
		ID:          ev.Expense.ID,
		Name:        ev.Expense.Name,
		AmountCents: ev.Expense.Amount.Cents,
		Category:    string(ev.Expense.Category),
		Date:        ev.Expense.Date.String(),
		Timestamp:   ts.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Event rebuilds the tracker event carried by the message.
func (m *ChangeMessage) Event() (tracker.ChangeEvent, error) {
	date, err := core.ParseDate(m.Date)
	if err != nil {
		return tracker.ChangeEvent{}, fmt.Errorf("message date: %w", err)
	}
	return tracker.ChangeEvent{
		Kind: tracker.ChangeKind(m.Kind),
		Expense: core.Expense{
			ID:       m.ID,
			Name:     m.Name,
			Amount:   core.Money{Cents: m.AmountCents},
			Category: core.Category(m.Category),
			Date:     date,
		},
		At: m.Timestamp,
	}, nil
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, fmt.Errorf("message without kind")
	}
	return &msg, nil
}
