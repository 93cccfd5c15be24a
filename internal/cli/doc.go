// Package cli holds the wiring and interactive editor behind the automator
// command.
package cli
