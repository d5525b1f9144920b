// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package peer

import (
	"testing"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
)

func TestAddGetIDRemove(t *testing.T) {
	table := New(nil)
	addr := util.MAC{0x02, 0, 0, 0, 0, 1}

	id, err := table.Add(0, addr, false, false, true)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got := table.GetID(addr); got != id {
		t.Fatalf("GetID = %d, want %d", got, id)
	}

	if err := table.Remove(0, id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := table.GetID(addr); got != -1 {
		t.Fatalf("GetID after Remove = %d, want -1", got)
	}
}

func TestGetIDMulticastAlwaysReturnsBroadcastSlot(t *testing.T) {
	table := New(nil)
	mcast := util.MAC{0x01, 0, 0, 0, 0, 0}
	if got := table.GetID(mcast); got != fmac.MaxPeers {
		t.Fatalf("GetID(multicast) = %d, want %d", got, fmac.MaxPeers)
	}
}

type fakeAPBitmap struct {
	slots map[int]util.MAC
}

func (f *fakeAPBitmap) SetSlot(slot int, addr util.MAC) { f.slots[slot] = addr }
func (f *fakeAPBitmap) ClearSlot(slot int)              { delete(f.slots, slot) }

func TestAddAPMulticastUsesReservedSlotAndMirrorsBitmap(t *testing.T) {
	ap := &fakeAPBitmap{slots: make(map[int]util.MAC)}
	table := New(ap)

	bcast := util.MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	id, err := table.Add(0, bcast, true, false, false)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id != fmac.MaxPeers {
		t.Fatalf("Add(AP, multicast) returned slot %d, want %d", id, fmac.MaxPeers)
	}
	if ap.slots[fmac.MaxPeers] != bcast {
		t.Fatalf("AP bitmap not mirrored on Add")
	}

	if err := table.Remove(0, fmac.MaxPeers); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := ap.slots[fmac.MaxPeers]; ok {
		t.Fatalf("AP bitmap slot not cleared on Remove")
	}
}

// TestAddRegularAPPeerMirrorsAndClearsBitmapSlot covers a regular (non-
// broadcast) peer added with isAP=true, as happens for every station that
// associates to an AP VIF: Add must mirror its own slot (not just the
// reserved broadcast slot), and Remove must clear exactly that slot.
func TestAddRegularAPPeerMirrorsAndClearsBitmapSlot(t *testing.T) {
	ap := &fakeAPBitmap{slots: make(map[int]util.MAC)}
	table := New(ap)

	addr := util.MAC{0x02, 0, 0, 0, 0, 1}
	id, err := table.Add(0, addr, true, false, true)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ap.slots[id] != addr {
		t.Fatalf("AP bitmap not mirrored for regular AP peer slot %d", id)
	}

	if err := table.Remove(0, id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := ap.slots[id]; ok {
		t.Fatalf("AP bitmap slot %d not cleared on Remove of a regular AP peer", id)
	}
}

// TestFlushClearsAPBitmapForRegularAPPeers is the Flush-path counterpart of
// TestAddRegularAPPeerMirrorsAndClearsBitmapSlot.
func TestFlushClearsAPBitmapForRegularAPPeers(t *testing.T) {
	ap := &fakeAPBitmap{slots: make(map[int]util.MAC)}
	table := New(ap)

	addr := util.MAC{0x02, 0, 0, 0, 0, 1}
	id, err := table.Add(0, addr, true, false, true)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	table.Flush(0)

	if _, ok := ap.slots[id]; ok {
		t.Fatalf("AP bitmap slot %d not cleared on Flush of a regular AP peer", id)
	}
}

func TestFlushRemovesOnlyMatchingVIF(t *testing.T) {
	table := New(nil)
	a, err := table.Add(0, util.MAC{0x02, 0, 0, 0, 0, 1}, false, false, true)
	if err != nil {
		t.Fatalf("Add a: %v", err)
	}
	b, err := table.Add(1, util.MAC{0x02, 0, 0, 0, 0, 2}, false, false, true)
	if err != nil {
		t.Fatalf("Add b: %v", err)
	}

	table.Flush(0)

	if table.Entry(a).ID != -1 {
		t.Fatalf("Flush(0) left peer a present")
	}
	if table.Entry(b).ID == -1 {
		t.Fatalf("Flush(0) removed peer b, which belongs to a different VIF")
	}
}

func TestAddNoFreeSlot(t *testing.T) {
	table := New(nil)
	for i := 0; i < fmac.MaxPeers; i++ {
		addr := util.MAC{0x02, 0, 0, 0, 0, byte(i)}
		if _, err := table.Add(0, addr, false, false, true); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}

	if _, err := table.Add(0, util.MAC{0x02, 0, 0, 0, 1, 0}, false, false, true); err == nil {
		t.Fatalf("Add past capacity: expected error, got nil")
	}
}
