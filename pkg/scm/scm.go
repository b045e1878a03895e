package scm

import (
	"bytes"

	"go-scm/pkg/mapping"
	"go-scm/util/helpers"

	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// SCM is a persistent heap backed by a file mapped at a fixed virtual
// address. Addresses returned by Alloc and Strdup stay valid across
// process runs that reopen the same file without Reset.
//
// A handle is single-owner, none of its methods are safe for
// concurrent use without external synchronization.
type SCM struct {
	m        *mapping.Mapping
	base     uintptr
	capacity uint64
	utilized uint64
}

// Open maps the pre-sized regular file at path and adopts or
// initializes the arena header. With opts.Reset, or when the header
// sentinel is absent, the arena is reset to empty, prior contents
// remain physically on disk until overwritten.
func Open(path string, opts *Options) (*SCM, error) {
	if opts == nil {
		opts = &Options{}
	}

	m, err := mapping.Open(path, &mapping.Options{Addr: opts.MapAddr})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open store mapping")
	}

	if m.Size() < arenaHeaderSize {
		_ = m.Close()
		return nil, errors.Wrapf(ErrInvalidArgument,
			"file too small for arena header: %d bytes", m.Size())
	}

	s := &SCM{
		m:        m,
		base:     m.Addr() + uintptr(arenaHeaderSize),
		capacity: m.Size(),
	}

	hdr := m.Addr()
	if opts.Reset || helpers.Word(hdr) != sentinel {
		helpers.SetWord(hdr, sentinel)
		helpers.SetWord(hdr+uintptr(wordSize), 0)
		s.utilized = 0
	} else {
		s.utilized = helpers.Word(hdr + uintptr(wordSize))
	}

	return s, nil
}

// Close flushes the mapping and releases the handle. Nil handle is a
// no-op. The handle is invalid afterwards.
func (s *SCM) Close() error {
	if s == nil {
		return nil
	}
	err := s.m.Close()
	s.m = nil
	return errors.Wrap(err, "failed to close store mapping")
}

// Alloc carves size bytes out of the arena and returns the payload
// address. The block header is written before the new utilization is
// published to the arena header, a crash in between leaves the header
// consistent with the blocks preceding it.
func (s *SCM) Alloc(size uint64) (uintptr, error) {
	if s == nil || s.m == nil {
		return 0, errors.Wrap(ErrInvalidArgument, "store is closed")
	}
	if size == 0 {
		return 0, errors.Wrap(ErrInvalidArgument, "zero allocation size")
	}
	if s.utilized+size+blockHeaderSize > s.capacity {
		return 0, errors.Wrapf(ErrCapacityExceeded,
			"utilized=%d capacity=%d requested=%d", s.utilized, s.capacity, size)
	}

	hdr := s.base + uintptr(s.utilized)
	helpers.SetWord(hdr, blockLive)
	helpers.SetWord(hdr+uintptr(wordSize), size)

	s.utilized += blockHeaderSize + size
	s.publish()

	return hdr + uintptr(blockHeaderSize), nil
}

// Strdup copies text plus a NUL terminator into a fresh block and
// returns the payload address, readable back via StringAt.
func (s *SCM) Strdup(text string) (uintptr, error) {
	if s == nil || s.m == nil {
		return 0, errors.Wrap(ErrInvalidArgument, "store is closed")
	}

	addr, err := s.Alloc(uint64(len(text)) + 1)
	if err != nil {
		return 0, err
	}

	buf := helpers.Bytes(addr, uint64(len(text))+1)
	copy(buf, text)
	buf[len(text)] = 0
	return addr, nil
}

// Free walks the block chain and clears the live flag of the block
// whose payload starts at addr. Unmatched addresses, double frees and
// foreign pointers are silent no-ops. Utilization never changes, the
// slot stays consumed.
func (s *SCM) Free(addr uintptr) {
	if s == nil || s.m == nil {
		return
	}

	end := s.base + uintptr(s.utilized)
	for cur := s.Base(); cur < end; cur = nextBlock(cur) {
		if cur == addr {
			markFreed(cur)
			return
		}
	}
}

// Utilized returns the bytes consumed by block headers and payloads,
// freed blocks included. Zero for a nil handle.
func (s *SCM) Utilized() uint64 {
	if s == nil {
		return 0
	}
	return s.utilized
}

// Capacity returns the total mapped size in bytes. Zero for a nil
// handle.
func (s *SCM) Capacity() uint64 {
	if s == nil {
		return 0
	}
	return s.capacity
}

// Base returns the start of the block chain, the first block's payload
// address once anything has been allocated, otherwise the start of
// payload space. Free walks from exactly this address.
func (s *SCM) Base() uintptr {
	if s == nil {
		return 0
	}
	if s.utilized != 0 {
		return s.base + uintptr(blockHeaderSize)
	}
	return s.base
}

// BytesAt returns a view of n bytes at addr, clamped to the end of the
// mapping. The slice aliases the store, it is valid until Close.
func (s *SCM) BytesAt(addr uintptr, n uint64) []byte {
	if s == nil || s.m == nil || addr < s.base {
		return nil
	}
	limit := s.m.Addr() + uintptr(s.capacity)
	if addr >= limit {
		return nil
	}
	return helpers.Bytes(addr, helpers.Min(n, uint64(limit-addr)))
}

// StringAt reads the NUL-terminated string stored at addr, as written
// by Strdup.
func (s *SCM) StringAt(addr uintptr) string {
	b := s.BytesAt(addr, s.capacity)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// publish writes the cached utilization into the arena header. Every
// mutating operation ends here so the persisted counter always matches
// the blocks physically written.
func (s *SCM) publish() {
	helpers.SetWord(s.m.Addr()+uintptr(wordSize), s.utilized)
}
