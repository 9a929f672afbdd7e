package core

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"havenlist/pkg/domain"
)

var (
	_ domain.IDGenerator = UUIDv7Generator{}
	_ domain.IDGenerator = (*SequenceGenerator)(nil)
)

// UUIDv7Generator issues time-ordered UUIDs.
type UUIDv7Generator struct{}

// NewID implements domain.IDGenerator.
func (UUIDv7Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		panic(fmt.Errorf("generate uuidv7: %w", err))
	}
	return id.String()
}

// SequenceGenerator issues monotonically increasing ids of the form
// <prefix><n>. The prefix keeps them apart from the numeric seed ids.
type SequenceGenerator struct {
	prefix string
	next   atomic.Uint64
}

// NewSequenceGenerator returns a generator whose first id is <prefix>1.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "seq-"
	}
	return &SequenceGenerator{prefix: prefix}
}

// NewID implements domain.IDGenerator.
func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s%d", g.prefix, g.next.Add(1))
}

// Observe advances the sequence past an id loaded from durable storage so
// that reloaded sessions never reissue it.
func (g *SequenceGenerator) Observe(id string) {
	rest, ok := strings.CutPrefix(id, g.prefix)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return
	}
	for {
		cur := g.next.Load()
		if n <= cur || g.next.CompareAndSwap(cur, n) {
			return
		}
	}
}
