package mapping

import (
	"os"
	"unsafe"

	"go-scm/util/logger"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var (
	ErrInvalidHandle  = errors.New("invalid handle")
	ErrNotRegularFile = errors.New("not a regular file")
	ErrMapFailed      = errors.New("map failed")
)

// Mapping is a file mapped read-write at a fixed virtual address. The
// descriptor is closed right after mapping, the mapping itself is the
// live handle to the storage.
type Mapping struct {
	addr uintptr
	size uint64
}

// Open maps the full size of the regular file at path, MAP_SHARED and
// MAP_FIXED at the configured address. A fixed mapping that cannot be
// established is a hard failure, there is no fallback to an OS-chosen
// address since recorded pointers would become meaningless.
func Open(path string, opts *Options) (*Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidHandle, "failed to open %s: %v", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidHandle, "failed to stat %s: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Wrapf(ErrNotRegularFile, "%s", path)
	}

	addr := opts.addr()
	size := uint64(info.Size())
	p, err := unix.MmapPtr(
		int(f.Fd()), 0,
		unsafe.Pointer(addr), uintptr(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED|unix.MAP_FIXED,
	)
	if err != nil {
		logger.L.Errorf("mmap of %s (%d bytes) at %#x failed: %v", path, size, addr, err)
		return nil, errors.Wrapf(ErrMapFailed, "addr=%#x size=%d: %v", addr, size, err)
	}

	return &Mapping{addr: uintptr(p), size: size}, nil
}

// Addr returns the base virtual address of the mapping.
func (m *Mapping) Addr() uintptr {
	if m == nil {
		return 0
	}
	return m.addr
}

// Size returns the mapped size in bytes, equal to the file size.
func (m *Mapping) Size() uint64 {
	if m == nil {
		return 0
	}
	return m.size
}

// Bytes returns the whole mapping as a byte slice. The slice is valid
// until Close.
func (m *Mapping) Bytes() []byte {
	if m == nil || m.addr == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(m.addr)), m.size)
}

// Flush synchronously writes all mapped pages back to the file. Once it
// returns without error every prior mutation is durable.
func (m *Mapping) Flush() error {
	if m == nil || m.addr == 0 {
		return nil
	}
	if err := unix.Msync(m.Bytes(), unix.MS_SYNC); err != nil {
		logger.L.Errorf("msync failed: %v", err)
		return errors.Wrap(err, "failed to sync mapped pages")
	}
	return nil
}

// Close flushes and unmaps. A flush failure is reported but never
// prevents the unmap, the caller must treat the file as potentially
// inconsistent on next open in that case. Nil receiver is a no-op.
func (m *Mapping) Close() error {
	if m == nil || m.addr == 0 {
		return nil
	}

	flushErr := m.Flush()
	if err := unix.MunmapPtr(unsafe.Pointer(m.addr), uintptr(m.size)); err != nil {
		logger.L.Errorf("munmap failed: %v", err)
		if flushErr == nil {
			flushErr = errors.Wrap(err, "failed to unmap")
		}
	}

	m.addr = 0
	m.size = 0
	return flushErr
}
