// Package memory provides in-process adapters for the Automator ports.
package memory
