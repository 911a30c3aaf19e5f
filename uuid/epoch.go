// Package uuid provides a UUID-based implementation of docdex.EpochGenerator.
package uuid

import (
	"github.com/fwojciec/docdex"
	"github.com/google/uuid"
)

// Ensure Generator implements docdex.EpochGenerator at compile time.
var _ docdex.EpochGenerator = (*Generator)(nil)

// Generator mints epochs as random (version 4) UUIDs. The 122 bits of
// randomness make collisions between concurrent or sequential indexing
// runs negligible.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// NewEpoch returns a fresh epoch token.
func (g *Generator) NewEpoch() docdex.Epoch {
	return docdex.Epoch(uuid.NewString())
}
