package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventNodeCreated   EventType = "node.created"
	EventNodeUpdated   EventType = "node.updated"
	EventNodeMoved     EventType = "node.moved"
	EventNodeDeleted   EventType = "node.deleted"
	EventNodeCloned    EventType = "node.cloned"
	EventSourceUpdated EventType = "source.updated"
)

// Event describes a committed content change. SourceID is uuid.Nil for
// node-level events.
type Event struct {
	Type     EventType
	NodeID   uuid.UUID
	SourceID uuid.UUID
	At       time.Time
}

// EventDispatcher forwards content changes to webhooks, search indexers and
// caches living outside the store.
type EventDispatcher interface {
	Dispatch(ctx context.Context, e Event) error
}

type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, Event) error { return nil }
