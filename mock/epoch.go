package mock

import "github.com/fwojciec/docdex"

var _ docdex.EpochGenerator = (*EpochGenerator)(nil)

// EpochGenerator is a mock implementation of docdex.EpochGenerator.
type EpochGenerator struct {
	NewEpochFn func() docdex.Epoch
}

func (g *EpochGenerator) NewEpoch() docdex.Epoch {
	return g.NewEpochFn()
}
