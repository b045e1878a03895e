package scm

type Options struct {
	// Reset discards the prior contents of the arena. The header is
	// reinitialized even without Reset when its sentinel is missing.
	Reset bool

	// MapAddr overrides the fixed mapping address, zero means the
	// process-wide default.
	MapAddr uintptr
}
