/*
Package builder implements the workflow store: the state container behind the
Automator editor.

A Store holds an ordered list of workflows, the ID of the selected workflow and
the visibility flag of the action library panel. All mutations are funneled
through its methods, which serialize on an internal mutex so that each
operation fully completes before the next one is processed.

# Missing references

By default an operation that names a workflow or action that does not exist is
a silent no-op, matching the editor's original behavior. WithStrict(true)
turns those cases into errors that match domain.ErrWorkflowNotFound or
domain.ErrActionNotFound with errors.Is.

# Identifiers

Action IDs come from a ports.IDGenerator. The default mints random UUIDs;
CounterGenerator provides deterministic, monotonic IDs for tests and demos.
*/
package builder
