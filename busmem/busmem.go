// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package busmem implements a first-fit allocator over a bus-address space,
// standing in for the on-chip bus HAL's buffer mapping (spec §1: the bus HAL
// is an opaque channel that can "map/unmap RX/TX buffers to bus-addressable
// memory"). Unlike a real DMA allocator it never touches process memory: it
// only hands out addresses and tracks which byte ranges are live, so that a
// loopback bus-HAL implementation can simulate Map/Unmap without real
// hardware.
package busmem

import (
	"container/list"
	"fmt"
	"sync"
)

type block struct {
	addr uint32
	size uint32
}

// Region is a bus-address space available for mapping.
type Region struct {
	mu sync.Mutex

	start uint32
	size  uint32

	free *list.List
	used map[uint32]uint32 // addr -> size
}

// NewRegion creates a bus-address region starting at start spanning size
// bytes.
func NewRegion(start, size uint32) *Region {
	r := &Region{start: start, size: size}
	r.free = list.New()
	r.free.PushFront(&block{addr: start, size: size})
	r.used = make(map[uint32]uint32)
	return r
}

// Map reserves size bytes of bus address space and returns its base address.
func (r *Region) Map(size uint32) (addr uint32, err error) {
	if size == 0 {
		return 0, fmt.Errorf("busmem: zero size map")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var e *list.Element
	var fb *block

	for e = r.free.Front(); e != nil; e = e.Next() {
		b := e.Value.(*block)
		if b.size >= size {
			fb = b
			break
		}
	}

	if fb == nil {
		return 0, fmt.Errorf("busmem: out of bus address space")
	}

	addr = fb.addr
	r.used[addr] = size

	if fb.size == size {
		r.free.Remove(e)
	} else {
		fb.addr += size
		fb.size -= size
	}

	return addr, nil
}

// Unmap releases a previously mapped address range.
func (r *Region) Unmap(addr uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	size, ok := r.used[addr]
	if !ok {
		return fmt.Errorf("busmem: unmap of unmapped address %#x", addr)
	}
	delete(r.used, addr)

	nb := &block{addr: addr, size: size}

	for e := r.free.Front(); e != nil; e = e.Next() {
		b := e.Value.(*block)
		if b.addr > nb.addr {
			r.free.InsertBefore(nb, e)
			r.coalesce()
			return nil
		}
	}

	r.free.PushBack(nb)
	r.coalesce()

	return nil
}

func (r *Region) coalesce() {
	var prev *block

	for e := r.free.Front(); e != nil; {
		b := e.Value.(*block)
		next := e.Next()

		if prev != nil && prev.addr+prev.size == b.addr {
			prev.size += b.size
			r.free.Remove(e)
		} else {
			prev = b
		}

		e = next
	}
}

// Mapped reports whether addr is currently live.
func (r *Region) Mapped(addr uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.used[addr]
	return ok
}
