package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter       EventType = "node_enter"
	EventVariableChanged EventType = "variable_changed"
	EventSessionBegin    EventType = "session_begin"
	EventSessionEnd      EventType = "session_end"
	EventSyncSkipped     EventType = "sync_skipped"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents playback entering a node.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeName string   `json:"node_name"`
	Kind     NodeKind `json:"kind"`
}

// VariableEvent represents a committed change to a live variable value.
type VariableEvent struct {
	EventBase
	Name string `json:"name"`
	Old  Value  `json:"old"`
	New  Value  `json:"new"`
}

// SessionEvent represents an external story session starting or ending.
type SessionEvent struct {
	EventBase
	Script  string   `json:"script"`
	Label   string   `json:"label"`
	Tracked []string `json:"tracked,omitempty"`
}

// SyncEvent represents a value the story bridge refused to forward.
type SyncEvent struct {
	EventBase
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// LifecycleHooks defines callbacks for runtime observability.
// Every field is optional.
type LifecycleHooks struct {
	OnNodeEnter       func(*NodeEvent)
	OnVariableChanged func(*VariableEvent)
	OnSessionBegin    func(*SessionEvent)
	OnSessionEnd      func(*SessionEvent)
	OnSyncSkipped     func(*SyncEvent)
}

// NewEventBase stamps an event with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// ComposeHooks returns hooks that call each of hooks in order.
func ComposeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:       chain(hooks, func(h LifecycleHooks) func(*NodeEvent) { return h.OnNodeEnter }),
		OnVariableChanged: chain(hooks, func(h LifecycleHooks) func(*VariableEvent) { return h.OnVariableChanged }),
		OnSessionBegin:    chain(hooks, func(h LifecycleHooks) func(*SessionEvent) { return h.OnSessionBegin }),
		OnSessionEnd:      chain(hooks, func(h LifecycleHooks) func(*SessionEvent) { return h.OnSessionEnd }),
		OnSyncSkipped:     chain(hooks, func(h LifecycleHooks) func(*SyncEvent) { return h.OnSyncSkipped }),
	}
}

func chain[E any](hooks []LifecycleHooks, pick func(LifecycleHooks) func(*E)) func(*E) {
	var fns []func(*E)
	for _, h := range hooks {
		if fn := pick(h); fn != nil {
			fns = append(fns, fn)
		}
	}
	if len(fns) == 0 {
		return nil
	}
	return func(e *E) {
		for _, fn := range fns {
			fn(e)
		}
	}
}
