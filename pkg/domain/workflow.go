package domain

const (
	// DefaultWorkflowID is the identifier of the workflow present at startup.
	DefaultWorkflowID = "1"

	// DefaultWorkflowName is the display name given to new workflows.
	DefaultWorkflowName = "Untitled Workflow"
)

// Workflow is a named, ordered collection of Actions.
// Insertion order of Actions is significant and preserved.
type Workflow struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Actions []Action `json:"actions" yaml:"actions"`
}

// NewWorkflow creates an empty workflow.
func NewWorkflow(id, name string) Workflow {
	return Workflow{
		ID:      id,
		Name:    name,
		Actions: []Action{},
	}
}

// Clone returns a deep copy of the workflow.
func (w Workflow) Clone() Workflow {
	c := w
	c.Actions = make([]Action, len(w.Actions))
	for i, a := range w.Actions {
		c.Actions[i] = a.Clone()
	}
	return c
}

// IndexOf returns the position of the action with the given ID, or -1.
func (w Workflow) IndexOf(actionID string) int {
	for i, a := range w.Actions {
		if a.ID == actionID {
			return i
		}
	}
	return -1
}

// HasAction reports whether an action with the given ID belongs to the workflow.
func (w Workflow) HasAction(actionID string) bool {
	return w.IndexOf(actionID) >= 0
}
