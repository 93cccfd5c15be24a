package ports

// IDGenerator mints identifiers for new actions.
// Implementations must never return the same value twice for the lifetime of
// a store, including when called many times within the same millisecond.
type IDGenerator interface {
	NewID() string
}
