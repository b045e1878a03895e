package helpers

import "unsafe"

// WordSize is the width of a single on-disk word. All store metadata
// (arena header, block headers) is stored in native-endian words.
const WordSize = uintptr(unsafe.Sizeof(uint64(0)))

// Word reads the native-endian word stored at addr. addr must point
// inside an established mapping.
func Word(addr uintptr) uint64 {
	return *(*uint64)(unsafe.Pointer(addr))
}

// SetWord writes v as a native-endian word at addr.
func SetWord(addr uintptr, v uint64) {
	*(*uint64)(unsafe.Pointer(addr)) = v
}

// Bytes returns a byte slice view of n bytes starting at addr. The
// slice aliases the mapping, it is valid only while the mapping is live.
func Bytes(addr uintptr, n uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
