package scm

import "go-scm/util/helpers"

// On-disk layout, all fields native-endian words:
//
//	arena header | block | block | ... | free space
//
// The arena header is two words, a sentinel marking the arena as
// initialized and the current utilization in bytes. Each block is a
// two-word header (live flag, payload size) followed by its payload.
// Blocks form an implicit chain, the next block starts right after the
// previous block's payload.
const (
	wordSize        = uint64(helpers.WordSize)
	arenaHeaderSize = 2 * wordSize
	blockHeaderSize = 2 * wordSize

	sentinel uint64 = 1

	blockLive uint64 = 1
	blockFree uint64 = 0
)

// blockPayloadSize reads the stored payload size of the block whose
// payload starts at addr.
func blockPayloadSize(addr uintptr) uint64 {
	return helpers.Word(addr - uintptr(wordSize))
}

// nextBlock steps the implicit chain from one payload address to the
// next. There is no explicit link field, the step is derived from the
// previous block's size word.
func nextBlock(addr uintptr) uintptr {
	return addr + uintptr(blockPayloadSize(addr)+blockHeaderSize)
}

// markFreed clears the live flag of the block whose payload starts at
// addr. Utilization is untouched, freed space is never reclaimed.
func markFreed(addr uintptr) {
	helpers.SetWord(addr-uintptr(blockHeaderSize), blockFree)
}
