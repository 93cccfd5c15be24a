/*
Package session manages independent editor sessions.

Each session owns its own builder.Store, created on first use by a Factory.
The Manager serializes multi-step turns on a session (for example: mutate,
then render) with reference-counted per-session locks, so concurrent clients
of the same session observe the same ordering a single UI event loop would.
Sessions are transient: closing one, or restarting the process, discards it.
*/
package session
