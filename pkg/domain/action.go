package domain

// Action is one step of a Workflow.
// Config is an open key-value map. It is always empty at creation and nothing
// in the builder writes to it.
type Action struct {
	ID     string         `json:"id" yaml:"id"`
	Type   string         `json:"type" yaml:"type"`
	Name   string         `json:"name" yaml:"name"`
	Config map[string]any `json:"config" yaml:"config"`
}

// NewAction creates an Action with an empty, non-nil configuration map.
func NewAction(id, actionType, name string) Action {
	return Action{
		ID:     id,
		Type:   actionType,
		Name:   name,
		Config: make(map[string]any),
	}
}

// Clone returns a copy of the action that shares no mutable state with the original.
func (a Action) Clone() Action {
	c := a
	c.Config = make(map[string]any, len(a.Config))
	for k, v := range a.Config {
		c.Config[k] = v
	}
	return c
}
