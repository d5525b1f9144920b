// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package vif

import (
	"testing"
	"time"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/peer"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
	"github.com/nrfconnect/nrf700x-fmac/hal/loopback"
)

// vifResponder answers CMD_INIT and CMD_SET_IFFLAGS, the two control
// round-trips the VIF table depends on: INIT_DONE to unblock ClassUMAC
// sends, IFFLAGS_STATUS to unblock ChgVIFState's wait.
func vifResponder(cmd []byte) [][]byte {
	h, err := umac.DecodeHeader(cmd)
	if err != nil {
		return nil
	}

	switch {
	case h.Class == umac.ClassSystem && umac.Cmd(h.ID) == umac.CmdInit:
		return [][]byte{umac.Alloc(umac.ClassSystem, uint16(umac.EvInitDone), 0, nil)}
	case h.Class == umac.ClassUMAC && umac.Cmd(h.ID) == umac.CmdSetIfflags:
		body := []byte{byte(h.WdevID), 0, 0, 0, 0}
		return [][]byte{umac.Alloc(umac.ClassUMAC, uint16(umac.EvIfflagsStatus), 0, body)}
	}
	return nil
}

func newTestTable(t *testing.T, respond loopback.Responder) (*Table, *peer.Table, *umac.Transport, func()) {
	t.Helper()

	bus := loopback.New(1<<20, respond)
	tr := umac.New(bus, nil)
	tr.ResetInitState()

	peers := peer.New(nil)
	table := New(tr, peers)

	tr.OnUMAC(func(h umac.Header, body []byte) {
		if umac.UMACEvent(h.ID) != umac.EvIfflagsStatus || len(body) < 5 {
			return
		}
		vifIdx := int(body[0])
		status := int32(body[1]) | int32(body[2])<<8 | int32(body[3])<<16 | int32(body[4])<<24
		_ = status
		table.OnIfflagsStatus(vifIdx, status)
	})

	return table, peers, tr, func() { bus.Close() }
}

func bringUp(t *testing.T, tr *umac.Transport) {
	t.Helper()
	if err := tr.SendSystem(uint16(umac.CmdInit), nil); err != nil {
		t.Fatalf("SendSystem(CmdInit): %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if tr.FWInitDone() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("transport never reached fw_init_done")
}

func TestAddVIFIndexZeroSkipsCommand(t *testing.T) {
	table, _, _, done := newTestTable(t, nil)
	defer done()

	v, err := table.AddVIF(0, fmac.VIFTypeSTA, util.MAC{0x02, 0, 0, 0, 0, 1}, fmac.NopCallbacks{})
	if err != nil {
		t.Fatalf("AddVIF: %v", err)
	}
	if v.Index != 0 || v.Type != fmac.VIFTypeSTA {
		t.Fatalf("unexpected VIF: %+v", v)
	}
}

func TestAddVIFRejectsOutOfRangeDuplicateAndCap(t *testing.T) {
	table, _, _, done := newTestTable(t, vifResponder)
	defer done()

	if _, err := table.AddVIF(-1, fmac.VIFTypeSTA, util.MAC{}, fmac.NopCallbacks{}); err != fmac.ErrInvalidArgument {
		t.Fatalf("idx=-1: got %v, want ErrInvalidArgument", err)
	}
	if _, err := table.AddVIF(fmac.MaxNumVIFs, fmac.VIFTypeSTA, util.MAC{}, fmac.NopCallbacks{}); err != fmac.ErrInvalidArgument {
		t.Fatalf("idx=MaxNumVIFs: got %v, want ErrInvalidArgument", err)
	}

	if _, err := table.AddVIF(0, fmac.VIFTypeSTA, util.MAC{0x02, 0, 0, 0, 0, 1}, fmac.NopCallbacks{}); err != nil {
		t.Fatalf("AddVIF(0): %v", err)
	}
	if _, err := table.AddVIF(0, fmac.VIFTypeSTA, util.MAC{0x02, 0, 0, 0, 0, 2}, fmac.NopCallbacks{}); err != fmac.ErrAlreadyExists {
		t.Fatalf("AddVIF(0) again: got %v, want ErrAlreadyExists", err)
	}

	bringUp(t, table.transport)
	for i := 1; i < fmac.MaxNumSTAs; i++ {
		addr := util.MAC{0x02, 0, 0, 0, 0, byte(i)}
		if _, err := table.AddVIF(i, fmac.VIFTypeSTA, addr, fmac.NopCallbacks{}); err != nil {
			t.Fatalf("AddVIF(%d): %v", i, err)
		}
	}
	if _, err := table.AddVIF(fmac.MaxNumSTAs, fmac.VIFTypeSTA, util.MAC{0x02, 0, 0, 0, 1, 0}, fmac.NopCallbacks{}); err != fmac.ErrCapExceeded {
		t.Fatalf("AddVIF past MaxNumSTAs: got %v, want ErrCapExceeded", err)
	}
}

func TestDelVIFFlushesPeersAndFreesSlot(t *testing.T) {
	table, peers, _, done := newTestTable(t, nil)
	defer done()

	if _, err := table.AddVIF(0, fmac.VIFTypeSTA, util.MAC{0x02, 0, 0, 0, 0, 1}, fmac.NopCallbacks{}); err != nil {
		t.Fatalf("AddVIF: %v", err)
	}
	if _, err := peers.Add(0, util.MAC{0x02, 0, 0, 0, 0, 9}, false, false, true); err != nil {
		t.Fatalf("peers.Add: %v", err)
	}

	if err := table.DelVIF(0); err != nil {
		t.Fatalf("DelVIF: %v", err)
	}
	if table.Get(0) != nil {
		t.Fatalf("DelVIF left slot populated")
	}
	if peers.GetID(util.MAC{0x02, 0, 0, 0, 0, 9}) != -1 {
		t.Fatalf("DelVIF did not flush peers of the deleted VIF")
	}
}

func TestDelVIFUnknownIndexIsNotFound(t *testing.T) {
	table, _, _, done := newTestTable(t, nil)
	defer done()

	if err := table.DelVIF(3); err != fmac.ErrNotFound {
		t.Fatalf("DelVIF(unset): got %v, want ErrNotFound", err)
	}
}

func TestChgVIFStateUpBringsUpAndAddsAPBroadcastPeer(t *testing.T) {
	table, peers, tr, done := newTestTable(t, vifResponder)
	defer done()

	bringUp(t, tr)

	if _, err := table.AddVIF(0, fmac.VIFTypeAP, util.MAC{0x02, 0, 0, 0, 0, 1}, fmac.NopCallbacks{}); err != nil {
		t.Fatalf("AddVIF: %v", err)
	}

	if err := table.ChgVIFState(0, true); err != nil {
		t.Fatalf("ChgVIFState(up): %v", err)
	}

	v := table.Get(0)
	if v.OpState != fmac.OpStateUp {
		t.Fatalf("OpState = %v, want OpStateUp", v.OpState)
	}
	if peers.GetID(util.MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}) == -1 {
		t.Fatalf("ChgVIFState(up) on an AP VIF did not add the broadcast pseudo-peer")
	}

	if err := table.ChgVIFState(0, false); err != nil {
		t.Fatalf("ChgVIFState(down): %v", err)
	}
	if table.Get(0).OpState != fmac.OpStateDown {
		t.Fatalf("OpState after down = %v, want OpStateDown", table.Get(0).OpState)
	}
}

func TestSetVIFMACAddrUnknownIndexIsNotFound(t *testing.T) {
	table, _, _, done := newTestTable(t, nil)
	defer done()

	if err := table.SetVIFMACAddr(5, util.MAC{0x02, 0, 0, 0, 0, 9}); err != fmac.ErrNotFound {
		t.Fatalf("SetVIFMACAddr(unset): got %v, want ErrNotFound", err)
	}
}

func TestSetVIFMACAddrUpdatesAddress(t *testing.T) {
	table, _, tr, done := newTestTable(t, vifResponder)
	defer done()

	bringUp(t, tr)

	if _, err := table.AddVIF(0, fmac.VIFTypeSTA, util.MAC{0x02, 0, 0, 0, 0, 1}, fmac.NopCallbacks{}); err != nil {
		t.Fatalf("AddVIF: %v", err)
	}

	newAddr := util.MAC{0x02, 0, 0, 0, 0, 0xAB}
	if err := table.SetVIFMACAddr(0, newAddr); err != nil {
		t.Fatalf("SetVIFMACAddr: %v", err)
	}
	if table.Get(0).MAC != newAddr {
		t.Fatalf("MAC = %v, want %v", table.Get(0).MAC, newAddr)
	}
}
