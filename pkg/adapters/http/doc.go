// Package http exposes builder sessions as a JSON API with server-sent change
// events. The routes are described by the embedded openapi.yaml.
package http
