// Package mcp exposes a builder session to AI agents through the Model
// Context Protocol. Each tool returns the editor view after the call.
package mcp
