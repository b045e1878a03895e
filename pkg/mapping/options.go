package mapping

// DefaultAddr is the process-wide virtual address at which store files
// are mapped. It must stay identical across builds and runs, pointers
// recorded inside a store are only meaningful relative to this address.
const DefaultAddr uintptr = 0x600000000000

type Options struct {
	// Addr overrides the virtual address of the mapping. Zero means
	// DefaultAddr. Every run that reopens the same file must use the
	// same address.
	Addr uintptr
}

func (o *Options) addr() uintptr {
	if o == nil || o.Addr == 0 {
		return DefaultAddr
	}
	return o.Addr
}
