package domain

import "errors"

// ErrWorkflowNotFound is returned in strict mode when a workflow ID does not match any stored workflow.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrActionNotFound is returned in strict mode when an action ID is not part of the selected workflow.
var ErrActionNotFound = errors.New("action not found")

// ErrUnknownActionType is returned when a catalog lookup is made for a type tag the catalog does not list.
var ErrUnknownActionType = errors.New("unknown action type")

// ErrDuplicateWorkflow is returned when seeding a store with two workflows sharing an ID.
var ErrDuplicateWorkflow = errors.New("duplicate workflow id")

// ErrIDExhausted is returned when the identifier generator keeps producing IDs already used in the workflow.
var ErrIDExhausted = errors.New("no unused action id")
