// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package peer implements the peer table of spec §4.1: a map from station
// MAC address to a small integer peer id, the join point for TX queues,
// power-save state and AP pending-queue bitmaps.
package peer

import (
	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
)

// Entry is a single peer table slot (spec §3 "Peer entry").
type Entry struct {
	ID            int // -1 = free
	VIFIdx        int
	Addr          util.MAC
	IsLegacy      bool
	QoSSupported  bool
	PSState       fmac.PSState
	PSTokenCount  int
	PendQBitmap   uint8 // 4-bit per-AC bitmap, mirrored to RPU AP memory
	apMirrored    bool  // true if Add mirrored this slot into APBitmap
}

// APBitmap is the narrow capability the peer table needs from the RPU
// memory region that mirrors per-peer AP pending-queue bitmaps (spec §3).
// AP-only; a STA-mode table is constructed with a nil APBitmap.
type APBitmap interface {
	SetSlot(slot int, addr util.MAC)
	ClearSlot(slot int)
}

// Table is the device-owned peer table, indexed 0..MaxPeers (MaxPeers
// itself is the reserved broadcast/multicast pseudo-peer for an AP VIF).
type Table struct {
	entries [fmac.MaxSWPeers]Entry
	ap      APBitmap
}

// New creates an empty peer table. ap may be nil for a STA-only device.
func New(ap APBitmap) *Table {
	t := &Table{ap: ap}
	for i := range t.entries {
		t.entries[i].ID = -1
	}
	return t
}

// Entry returns the slot for id, or nil if out of range.
func (t *Table) Entry(id int) *Entry {
	if id < 0 || id >= len(t.entries) {
		return nil
	}
	return &t.entries[id]
}

// GetID implements spec §4.1 peer_get_id: returns MaxPeers for any
// multicast address unconditionally, else the matching slot id, else -1.
func (t *Table) GetID(addr util.MAC) int {
	if addr.IsMulticast() {
		return fmac.MaxPeers
	}

	for i := range t.entries {
		if t.entries[i].ID != -1 && t.entries[i].Addr.Equal(addr) {
			return t.entries[i].ID
		}
	}

	return -1
}

// Add implements spec §4.1 peer_add.
func (t *Table) Add(vifIdx int, addr util.MAC, isAP, isLegacy, qosSupported bool) (int, error) {
	if isAP && addr.IsMulticast() {
		slot := fmac.MaxPeers
		e := &t.entries[slot]
		e.ID = slot
		e.VIFIdx = vifIdx
		e.Addr = addr
		e.IsLegacy = isLegacy
		e.QoSSupported = qosSupported
		e.PSState = fmac.PSActive
		e.PSTokenCount = 0
		e.PendQBitmap = 0
		e.apMirrored = t.ap != nil

		if t.ap != nil {
			t.ap.SetSlot(slot, addr)
		}

		return slot, nil
	}

	for i := 0; i < fmac.MaxPeers; i++ {
		if t.entries[i].ID == -1 {
			e := &t.entries[i]
			e.ID = i
			e.VIFIdx = vifIdx
			e.Addr = addr
			e.IsLegacy = isLegacy
			e.QoSSupported = qosSupported
			e.PSState = fmac.PSActive
			e.PSTokenCount = 0
			e.PendQBitmap = 0
			e.apMirrored = isAP && t.ap != nil

			if isAP && t.ap != nil {
				t.ap.SetSlot(i, addr)
			}

			return i, nil
		}
	}

	return -1, fmac.ErrNoFreeSlot
}

// Remove implements spec §4.1 peer_remove.
func (t *Table) Remove(vifIdx, id int) error {
	e := t.Entry(id)
	if e == nil || e.ID == -1 {
		return fmac.ErrNotFound
	}

	mirrored := e.apMirrored

	*e = Entry{ID: -1}

	if mirrored && t.ap != nil {
		t.ap.ClearSlot(id)
	}

	return nil
}

// Flush implements spec §4.1 peers_flush: removes all peers of vifIdx.
func (t *Table) Flush(vifIdx int) {
	for i := range t.entries {
		if t.entries[i].ID != -1 && t.entries[i].VIFIdx == vifIdx {
			mirrored := t.entries[i].apMirrored
			t.entries[i] = Entry{ID: -1}
			if mirrored && t.ap != nil {
				t.ap.ClearSlot(i)
			}
		}
	}
}
