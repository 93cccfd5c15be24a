// Package view projects builder state into the editor's visual structure
// and renders it as boxed terminal text, Markdown, JSON or YAML.
//
// The projection is a pure function of a snapshot. Display indices on cards
// are derived at projection time and never stored.
package view
