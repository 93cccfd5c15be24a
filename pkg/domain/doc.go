/*
Package domain contains the core domain models of the Automator workflow builder.

It defines the entities a user assembles while building a workflow: the Workflow,
its ordered Actions, and the static catalog of action kinds that can be added.
This package is kept pure and free of external dependencies like I/O or
transport, following Hexagonal Architecture principles.

# Key Entities

  - Workflow: A named, ordered collection of Actions.
  - Action: One step of a Workflow (type tag, display name, configuration map).
  - CatalogEntry: A fixed menu item describing an addable action kind.
  - Snapshot: A deep copy of builder state used for rendering and diffing.
  - Event: A notification emitted after an effective mutation.
*/
package domain
