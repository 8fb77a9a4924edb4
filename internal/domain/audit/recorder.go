// Package audit records who changed what on orders, deliveries and payments.
package audit

import (
	"context"
	"encoding/json"
	"time"

	appctx "tidewater/internal/core/context"
	"tidewater/internal/core/id"
)

// Action is the kind of audited change.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionCancel  Action = "cancel"
	ActionReceive Action = "receive"
	ActionDelete  Action = "delete"
)

// Entry is one audit record. Snapshot is marshalled to JSON by the recorder.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Actor      string
	Snapshot   any
}

// Recorder stores audit entries inside the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Record is an entry read back from the log, snapshot as stored JSON.
type Record struct {
	ID         id.ID           `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   id.ID           `json:"entityId"`
	Action     Action          `json:"action"`
	Actor      string          `json:"actor,omitempty"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Log is a Recorder that can also list an entity's history, newest first.
type Log interface {
	Recorder
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Record, error)
}

// NewEntry builds an entry attributed to the caller in ctx.
func NewEntry(ctx context.Context, entityType string, entityID id.ID, action Action, snapshot any) Entry {
	return Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      appctx.GetSubject(ctx),
		Snapshot:   snapshot,
	}
}
