package docdex

// Epoch is an opaque token minted once per indexing run and stamped on
// every record the run produces. Epochs have no internal structure beyond
// equality: a sweep deletes records whose epoch differs from the current
// run's epoch. Two runs of the same root URL must never share an epoch.
type Epoch string

// EpochGenerator mints fresh epochs. Each call is independent; no
// process-wide state is required.
type EpochGenerator interface {
	// NewEpoch returns a fresh token with negligible collision
	// probability across the lifetime of the system.
	NewEpoch() Epoch
}
