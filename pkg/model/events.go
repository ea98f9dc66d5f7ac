package model

import "time"

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventModelDefined   EventType = "model_defined"
	EventDocumentBuilt  EventType = "document_built"
	EventDocumentFailed EventType = "document_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ModelEvent is emitted when a model is attached to a registry.
type ModelEvent struct {
	EventBase
	Model    string `json:"model"`
	Fields   int    `json:"fields"`
	Replaced bool   `json:"replaced,omitempty"`
}

// DocumentEvent is emitted after every call to Model.New.
type DocumentEvent struct {
	EventBase
	Model    string        `json:"model"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
	Kind     string        `json:"kind,omitempty"` // error kind, see schema.KindName
}

// LifecycleHooks defines callbacks for registry observability.
type LifecycleHooks struct {
	OnModelDefined   func(*ModelEvent)
	OnDocumentBuilt  func(*DocumentEvent)
	OnDocumentFailed func(*DocumentEvent)
}
