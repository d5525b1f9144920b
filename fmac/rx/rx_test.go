// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package rx

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/peer"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
	"github.com/nrfconnect/nrf700x-fmac/fmac/vif"
	"github.com/nrfconnect/nrf700x-fmac/hal/loopback"
)

type recordingCallbacks struct {
	fmac.NopCallbacks
	frames [][]byte
	rssis  []int8
}

func (r *recordingCallbacks) RxFrame(f []byte) {
	r.frames = append(r.frames, append([]byte(nil), f...))
}

func (r *recordingCallbacks) ProcessRSSIFromRx(rssi int8) {
	r.rssis = append(r.rssis, rssi)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestDeliverMSDUDirectAndRearm(t *testing.T) {
	bus := loopback.New(1<<20, nil)
	tr := umac.New(bus, nil)
	tr.ResetInitState()

	peers := peer.New(nil)
	vifs := vif.New(tr, peers)

	cb := &recordingCallbacks{}
	if _, err := vifs.AddVIF(0, fmac.VIFTypeSTA, util.MAC{0x02, 0, 0, 0, 0, 9}, cb); err != nil {
		t.Fatalf("AddVIF: %v", err)
	}

	peerID, err := peers.Add(0, util.MAC{0x02, 0, 0, 0, 0, 1}, false, false, true)
	if err != nil {
		t.Fatalf("peers.Add: %v", err)
	}

	path, err := New(DefaultConfig(), tr, peers, vifs, nil)
	if err != nil {
		t.Fatalf("rx.New: %v", err)
	}
	defer path.Close()

	payload := []byte("hello-ethernet-frame")
	body := make([]byte, 8+len(payload))
	body[0] = 0 // global descriptor 0
	body[1] = byte(PacketMSDU) | clusterStartFlag
	body[2] = byte(peerID)
	body[3] = byte(int8(-42))
	binary.LittleEndian.PutUint32(body[4:8], 0)
	copy(body[8:], payload)

	path.onData(umac.Header{Class: umac.ClassData, ID: uint16(umac.EvRxBuff)}, body)

	waitFor(t, func() bool { return len(cb.frames) == 1 })

	if string(cb.frames[0]) != string(payload) {
		t.Fatalf("frame = %q, want %q", cb.frames[0], payload)
	}
	waitFor(t, func() bool { return len(cb.rssis) == 1 })
	if cb.rssis[0] != -42 {
		t.Fatalf("rssi = %d, want -42", cb.rssis[0])
	}
}

func TestUnknownVIFStillRearms(t *testing.T) {
	bus := loopback.New(1<<20, nil)
	tr := umac.New(bus, nil)
	tr.ResetInitState()

	peers := peer.New(nil)
	vifs := vif.New(tr, peers)

	path, err := New(DefaultConfig(), tr, peers, vifs, nil)
	if err != nil {
		t.Fatalf("rx.New: %v", err)
	}
	defer path.Close()

	path.mu.Lock()
	before := path.pools[0].slots[0].nwb
	path.mu.Unlock()

	body := make([]byte, 8)
	body[0] = 0
	body[1] = byte(PacketMSDU)
	binary.LittleEndian.PutUint32(body[4:8], 7) // no such VIF

	path.onData(umac.Header{Class: umac.ClassData, ID: uint16(umac.EvRxBuff)}, body)

	waitFor(t, func() bool {
		path.mu.Lock()
		defer path.mu.Unlock()
		return path.pools[0].slots[0].nwb != before
	})
}

func TestFilterMatches(t *testing.T) {
	mgmt := []byte{0x00, 0x00}
	data := []byte{0x08, 0x00}

	if !filterMatches(1<<0, mgmt) {
		t.Fatalf("management frame should match type-0 filter")
	}
	if filterMatches(1<<0, data) {
		t.Fatalf("data frame should not match type-0-only filter")
	}
	if !filterMatches(1<<2, data) {
		t.Fatalf("data frame should match type-2 filter")
	}
}
