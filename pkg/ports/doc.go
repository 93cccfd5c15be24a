/*
Package ports defines the driven ports (interfaces) for the Automator builder.

These interfaces decouple the workflow store from external implementations,
allowing it to emit change notifications to various transports and to mint
identifiers with interchangeable strategies.

# Key Interfaces

  - EventPublisher: Receives change events after effective mutations (SSE, Redis).
  - IDGenerator: Mints action identifiers (random UUIDs or a monotonic counter).
*/
package ports
