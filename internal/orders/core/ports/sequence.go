package ports

// NumberSequence issues human-readable order numbers. It replaces the
// count-documents-then-format scheme that collides under concurrent
// checkouts: implementations must guarantee process-wide uniqueness.
type NumberSequence interface {
	// Batch returns n distinct order numbers sharing one creation
	// timestamp, in issue order.
	Batch(n int) []string
}
