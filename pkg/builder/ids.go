package builder

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/aretw0/automator/pkg/ports"
	"github.com/google/uuid"
)

// ID generator kinds accepted by NewIDGenerator.
const (
	IDKindUUID    = "uuid"
	IDKindCounter = "counter"
)

// UUIDGenerator mints random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CounterGenerator mints monotonically increasing decimal identifiers.
// Safe for concurrent use.
type CounterGenerator struct {
	prefix string
	n      atomic.Uint64
}

// NewCounterGenerator creates a counter that starts at 1.
// Every identifier is prefixed with prefix.
func NewCounterGenerator(prefix string) *CounterGenerator {
	return &CounterGenerator{prefix: prefix}
}

// NewID returns the next identifier.
func (g *CounterGenerator) NewID() string {
	return g.prefix + strconv.FormatUint(g.n.Add(1), 10)
}

// NewIDGenerator returns the generator for a configured kind.
func NewIDGenerator(kind string) (ports.IDGenerator, error) {
	switch kind {
	case IDKindUUID, "":
		return UUIDGenerator{}, nil
	case IDKindCounter:
		return NewCounterGenerator("a"), nil
	default:
		return nil, fmt.Errorf("unknown id generator %q", kind)
	}
}
