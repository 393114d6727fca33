package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchDispatched EventType = "SearchDispatched"
	EventSearchCompleted  EventType = "SearchCompleted"
	EventSearchFailed     EventType = "SearchFailed"
	EventSearchDiscarded  EventType = "SearchDiscarded"
	EventSearchSkipped    EventType = "SearchSkipped"
	EventResultsCleared   EventType = "ResultsCleared"
	EventConfigLoaded     EventType = "ConfigLoaded"
	EventConfigSaved      EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchDispatchedEvent is emitted when a request is handed to the gateway
type SearchDispatchedEvent struct {
	ID       RequestID
	Query    string
	Fallback bool
}

func (e SearchDispatchedEvent) Type() EventType { return EventSearchDispatched }

// SearchCompletedEvent is emitted when the awaited request succeeds and its results are applied
type SearchCompletedEvent struct {
	ID       RequestID
	Query    string
	Count    int
	Duration time.Duration
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when the awaited request fails
type SearchFailedEvent struct {
	ID       RequestID
	Query    string
	Kind     ErrorKind
	Err      error
	Duration time.Duration
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// SearchDiscardedEvent is emitted when a superseded response arrives and is dropped
type SearchDiscardedEvent struct {
	ID      RequestID
	Awaited RequestID // 0 when nothing is awaited (results were cleared)
}

func (e SearchDiscardedEvent) Type() EventType { return EventSearchDiscarded }

// Skip reasons
const (
	SkipDuplicate = "duplicate"
	SkipEncode    = "encode"
)

// SearchSkippedEvent is emitted when settled text does not lead to a dispatch
type SearchSkippedEvent struct {
	Query  string
	Reason string
}

func (e SearchSkippedEvent) Type() EventType { return EventSearchSkipped }

// ResultsClearedEvent is emitted when empty text resets the results
type ResultsClearedEvent struct{}

func (e ResultsClearedEvent) Type() EventType { return EventResultsCleared }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is written to disk
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
