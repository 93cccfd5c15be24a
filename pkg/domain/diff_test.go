package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }

func TestDiff(t *testing.T) {
	base := Snapshot{
		SelectedID:     "1",
		LibraryVisible: true,
		Workflows: []Workflow{
			{ID: "1", Name: "Untitled Workflow", Actions: []Action{
				NewAction("a1", "files", "Get Specified Files"),
			}},
		},
	}

	tests := []struct {
		name     string
		old      *Snapshot
		new      func() *Snapshot
		wantDiff *SnapshotDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  func() *Snapshot { s := base.Clone(); return &s },
			wantDiff: &SnapshotDiff{
				SelectedID:     strPtr("1"),
				LibraryVisible: boolPtr(true),
				Workflows: map[string]*WorkflowDelta{
					"1": {
						Name:  strPtr("Untitled Workflow"),
						Added: []Action{NewAction("a1", "files", "Get Specified Files")},
					},
				},
			},
		},
		{
			name:     "No Changes",
			old:      &base,
			new:      func() *Snapshot { s := base.Clone(); return &s },
			wantDiff: nil,
		},
		{
			name: "Action Appended",
			old:  &base,
			new: func() *Snapshot {
				s := base.Clone()
				s.Workflows[0].Actions = append(s.Workflows[0].Actions, NewAction("a2", "http", "HTTP Request"))
				return &s
			},
			wantDiff: &SnapshotDiff{
				Workflows: map[string]*WorkflowDelta{
					"1": {Added: []Action{NewAction("a2", "http", "HTTP Request")}},
				},
			},
		},
		{
			name: "Action Removed",
			old:  &base,
			new: func() *Snapshot {
				s := base.Clone()
				s.Workflows[0].Actions = []Action{}
				return &s
			},
			wantDiff: &SnapshotDiff{
				Workflows: map[string]*WorkflowDelta{
					"1": {Removed: []string{"a1"}},
				},
			},
		},
		{
			name: "Rename and Toggle",
			old:  &base,
			new: func() *Snapshot {
				s := base.Clone()
				s.Workflows[0].Name = "Backup"
				s.LibraryVisible = false
				return &s
			},
			wantDiff: &SnapshotDiff{
				LibraryVisible: boolPtr(false),
				Workflows: map[string]*WorkflowDelta{
					"1": {Name: strPtr("Backup")},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new())
			if !reflect.DeepEqual(got, tt.wantDiff) {
				gotJSON, _ := json.Marshal(got)
				wantJSON, _ := json.Marshal(tt.wantDiff)
				t.Errorf("Diff() mismatch\n got: %s\nwant: %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestDiff_NilNew(t *testing.T) {
	if d := Diff(&Snapshot{}, nil); d != nil {
		t.Errorf("expected nil diff for nil new snapshot, got %+v", d)
	}
}

func TestDiff_JSONOmitsUnchanged(t *testing.T) {
	old := Snapshot{SelectedID: "1", Workflows: []Workflow{NewWorkflow("1", "A")}}
	updated := old.Clone()
	updated.LibraryVisible = true

	data, err := json.Marshal(Diff(&old, &updated))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"library_visible":true`) {
		t.Errorf("expected library_visible in payload, got %s", s)
	}
	if strings.Contains(s, "selected_id") || strings.Contains(s, "workflows") {
		t.Errorf("expected unchanged fields to be omitted, got %s", s)
	}
}
