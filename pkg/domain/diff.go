package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SelectedID is set when the selection moved.
	SelectedID *string `json:"selected_id,omitempty"`

	// LibraryVisible is set when the catalog panel was toggled.
	LibraryVisible *bool `json:"library_visible,omitempty"`

	// Workflows holds per-workflow changes keyed by workflow ID.
	Workflows map[string]*WorkflowDelta `json:"workflows,omitempty"`
}

// WorkflowDelta describes what changed inside a single workflow.
type WorkflowDelta struct {
	// Name is set when the workflow was renamed.
	Name *string `json:"name,omitempty"`

	// Added lists actions appended since the old snapshot, in order.
	Added []Action `json:"added,omitempty"`

	// Removed lists IDs of actions no longer present.
	Removed []string `json:"removed,omitempty"`
}

func (d *WorkflowDelta) empty() bool {
	return d.Name == nil && len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{}

	if oldSnap == nil || oldSnap.SelectedID != newSnap.SelectedID {
		id := newSnap.SelectedID
		diff.SelectedID = &id
	}
	if oldSnap == nil || oldSnap.LibraryVisible != newSnap.LibraryVisible {
		v := newSnap.LibraryVisible
		diff.LibraryVisible = &v
	}

	for _, nw := range newSnap.Workflows {
		var ow Workflow
		var existed bool
		if oldSnap != nil {
			ow, existed = oldSnap.Workflow(nw.ID)
		}
		delta := diffWorkflow(ow, nw, existed)
		if delta.empty() {
			continue
		}
		if diff.Workflows == nil {
			diff.Workflows = make(map[string]*WorkflowDelta)
		}
		diff.Workflows[nw.ID] = delta
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffWorkflow(old, new Workflow, existed bool) *WorkflowDelta {
	delta := &WorkflowDelta{}

	if !existed || old.Name != new.Name {
		name := new.Name
		delta.Name = &name
	}

	// Removed: present in old, missing in new
	for _, a := range old.Actions {
		if !new.HasAction(a.ID) {
			delta.Removed = append(delta.Removed, a.ID)
		}
	}

	// Added: present in new, missing in old (order follows new)
	for _, a := range new.Actions {
		if !old.HasAction(a.ID) {
			delta.Added = append(delta.Added, a.Clone())
		}
	}

	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.SelectedID == nil &&
		d.LibraryVisible == nil &&
		len(d.Workflows) == 0
}
