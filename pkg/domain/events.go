package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventActionAdded      EventType = "action_added"
	EventActionRemoved    EventType = "action_removed"
	EventWorkflowRenamed  EventType = "workflow_renamed"
	EventWorkflowSelected EventType = "workflow_selected"
	EventLibraryToggled   EventType = "library_toggled"
)

// Event is emitted after an effective mutation of builder state.
// Operations that degrade to a no-op emit nothing.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id,omitempty"`
	WorkflowID string    `json:"workflow_id,omitempty"`

	// Action is set for action_added and action_removed.
	Action *Action `json:"action,omitempty"`

	// Name is the new workflow name for workflow_renamed.
	Name string `json:"name,omitempty"`

	// LibraryVisible is the new flag value for library_toggled. It is nil for
	// every other event type, so a hidden panel still serializes as false.
	LibraryVisible *bool `json:"library_visible,omitempty"`
}
