package domain

// Snapshot is a point-in-time copy of builder state.
// It shares no mutable state with the store it was taken from, so it can be
// rendered, diffed or compared with reflect.DeepEqual freely.
type Snapshot struct {
	Workflows      []Workflow `json:"workflows" yaml:"workflows"`
	SelectedID     string     `json:"selected_id" yaml:"selected_id"`
	LibraryVisible bool       `json:"library_visible" yaml:"library_visible"`
}

// Selected returns the currently selected workflow, if it exists.
func (s Snapshot) Selected() (Workflow, bool) {
	return s.Workflow(s.SelectedID)
}

// Workflow looks up a workflow by ID.
func (s Snapshot) Workflow(id string) (Workflow, bool) {
	for _, w := range s.Workflows {
		if w.ID == id {
			return w, true
		}
	}
	return Workflow{}, false
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Workflows = make([]Workflow, len(s.Workflows))
	for i, w := range s.Workflows {
		c.Workflows[i] = w.Clone()
	}
	return c
}
