package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// TransactionEvent is the lightweight change notification published on every
// mutation. It carries only the id and the action; the sync worker fetches
// the full row from the store when it needs one.
type TransactionEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUpsertEvent(id string) *TransactionEvent {
	return &TransactionEvent{ID: id, Action: ActionUpsert, Timestamp: time.Now()}
}

func NewDeleteEvent(id string) *TransactionEvent {
	return &TransactionEvent{ID: id, Action: ActionDelete, Timestamp: time.Now()}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, fmt.Errorf("event missing id")
	}
	switch e.Action {
	case ActionUpsert, ActionDelete:
	default:
		return nil, fmt.Errorf("unknown event action %q", e.Action)
	}
	return &e, nil
}
