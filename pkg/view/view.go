package view

import (
	"github.com/aretw0/automator/pkg/domain"
)

// Fixed copy shown by the editor.
const (
	LibraryHeading = "Actions"
	ConfigureHint  = "Configure this action..."
	EmptyIcon      = "🤖"
	EmptyMessage   = "Drag actions here to build your workflow"
	EmptyHint      = "or click an action in the library"
	RemoveLabel    = "Remove"
	RemoveIcon     = "✕"
)

// View is the projection of builder state into the editor's visual tree.
// Every value is read directly from the snapshot except Card.Index.
type View struct {
	Toolbar    Toolbar     `json:"toolbar" yaml:"toolbar"`
	Library    Library     `json:"library" yaml:"library"`
	WorkflowID string      `json:"workflow_id" yaml:"workflow_id"`
	Title      string      `json:"title" yaml:"title"`
	Cards      []Card      `json:"cards" yaml:"cards"`
	Empty      *EmptyState `json:"empty_state,omitempty" yaml:"empty_state,omitempty"`
}

// Button is a toolbar control.
type Button struct {
	Label   string `json:"label" yaml:"label"`
	Icon    string `json:"icon" yaml:"icon"`
	Pressed bool   `json:"pressed,omitempty" yaml:"pressed,omitempty"`
	// Inert buttons are rendered but have no effect.
	Inert bool `json:"inert,omitempty" yaml:"inert,omitempty"`
}

// Toolbar holds the Run, Stop and Library controls.
type Toolbar struct {
	Run     Button `json:"run" yaml:"run"`
	Stop    Button `json:"stop" yaml:"stop"`
	Library Button `json:"library" yaml:"library"`
}

// Library is the action catalog panel. Entries is empty when hidden.
type Library struct {
	Visible bool                  `json:"visible" yaml:"visible"`
	Heading string                `json:"heading" yaml:"heading"`
	Entries []domain.CatalogEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// Card is one numbered action in the workflow canvas.
type Card struct {
	// Index is the one-based display position. It is never stored.
	Index  int    `json:"index" yaml:"index"`
	ID     string `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Name   string `json:"name" yaml:"name"`
	Icon   string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Hint   string `json:"hint" yaml:"hint"`
	// Remove deletes this card's action from the selected workflow.
	Remove Button `json:"remove" yaml:"remove"`
}

// EmptyState is the prompt shown when the selected workflow has no actions.
type EmptyState struct {
	Icon    string `json:"icon" yaml:"icon"`
	Message string `json:"message" yaml:"message"`
	Hint    string `json:"hint" yaml:"hint"`
}

// Project builds the View for a snapshot.
//
// When the selected workflow does not exist the title is empty and neither
// cards nor the empty-state prompt are shown.
func Project(snap domain.Snapshot) View {
	v := View{
		Toolbar: Toolbar{
			Run:     Button{Label: "Run", Icon: "▶️", Inert: true},
			Stop:    Button{Label: "Stop", Icon: "⏹️", Inert: true},
			Library: Button{Label: "Library", Icon: "📚", Pressed: snap.LibraryVisible},
		},
		Library: Library{
			Visible: snap.LibraryVisible,
			Heading: LibraryHeading,
		},
		WorkflowID: snap.SelectedID,
		Cards:      []Card{},
	}
	if snap.LibraryVisible {
		v.Library.Entries = domain.Catalog()
	}

	w, ok := snap.Selected()
	if !ok {
		return v
	}
	v.Title = w.Name

	if len(w.Actions) == 0 {
		v.Empty = &EmptyState{Icon: EmptyIcon, Message: EmptyMessage, Hint: EmptyHint}
		return v
	}

	v.Cards = make([]Card, len(w.Actions))
	for i, a := range w.Actions {
		v.Cards[i] = Card{
			Index:  i + 1,
			ID:     a.ID,
			Type:   a.Type,
			Name:   a.Name,
			Icon:   domain.IconFor(a.Type),
			Hint:   ConfigureHint,
			Remove: Button{Label: RemoveLabel, Icon: RemoveIcon},
		}
	}
	return v
}

// CardByIndex returns the card at a one-based display index.
func (v View) CardByIndex(index int) (Card, bool) {
	if index < 1 || index > len(v.Cards) {
		return Card{}, false
	}
	return v.Cards[index-1], true
}
