package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDGenerator returns prefix-001, prefix-002, ... in order.
//
// Golden snapshots embed analysis IDs, so a counter keeps them
// byte-identical across runs while still giving every step of a scenario
// its own row in the store. If prefix is empty, "test-analysis" is used.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator creates a generator for prefix.
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "test-analysis"
	}
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n)
}
