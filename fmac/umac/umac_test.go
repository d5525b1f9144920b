// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package umac

import (
	"testing"
	"time"

	"github.com/nrfconnect/nrf700x-fmac/hal/loopback"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	want := Header{Class: ClassUMAC, ID: 0x1234, Length: 7, WdevID: 0xAABBCCDD}
	buf := make([]byte, headerLen)
	want.Encode(buf)

	got, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != want {
		t.Fatalf("DecodeHeader = %+v, want %+v", got, want)
	}
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeHeader(make([]byte, headerLen-1)); err == nil {
		t.Fatalf("DecodeHeader(short buffer): expected error, got nil")
	}
}

func TestAllocSizesAndEncodesBody(t *testing.T) {
	body := []byte{1, 2, 3}
	buf := Alloc(ClassData, 9, 42, body)

	if len(buf) != headerLen+len(body) {
		t.Fatalf("Alloc length = %d, want %d", len(buf), headerLen+len(body))
	}

	h, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Class != ClassData || h.ID != 9 || h.Length != uint16(len(body)) || h.WdevID != 42 {
		t.Fatalf("decoded header = %+v, unexpected", h)
	}
	if got := buf[headerLen:]; string(got) != string(body) {
		t.Fatalf("encoded body = %v, want %v", got, body)
	}
}

func TestNotifierSignalUnblocksWait(t *testing.T) {
	n := NewNotifier()
	done := make(chan error, 1)
	go func() { done <- n.Wait(time.Second) }()

	n.Signal()

	if err := <-done; err != nil {
		t.Fatalf("Wait after Signal: %v", err)
	}
}

func TestNotifierWaitTimesOutWithoutSignal(t *testing.T) {
	n := NewNotifier()
	if err := n.Wait(10 * time.Millisecond); err == nil {
		t.Fatalf("Wait on an un-signaled notifier: expected timeout error, got nil")
	}
}

func TestNotifierResetRearms(t *testing.T) {
	n := NewNotifier()
	n.Signal()
	if !n.Fired() {
		t.Fatalf("Fired() = false after Signal")
	}

	n.Reset()
	if n.Fired() {
		t.Fatalf("Fired() = true after Reset")
	}
	if err := n.Wait(10 * time.Millisecond); err == nil {
		t.Fatalf("Wait after Reset without a new Signal: expected timeout, got nil")
	}
}

func TestTransportDispatchesByClass(t *testing.T) {
	bus := loopback.New(1<<20, nil)
	tr := New(bus, nil)
	defer tr.Close()

	systemCh := make(chan Header, 1)
	umacCh := make(chan Header, 1)
	dataCh := make(chan Header, 1)

	tr.OnSystem(func(h Header, body []byte) { systemCh <- h })
	tr.OnUMAC(func(h Header, body []byte) { umacCh <- h })
	tr.OnData(func(h Header, body []byte) { dataCh <- h })

	bus.Inject(Alloc(ClassSystem, uint16(EvInitDone), 0, nil))
	select {
	case h := <-systemCh:
		if SystemEvent(h.ID) != EvInitDone {
			t.Fatalf("system handler got ID %d, want EvInitDone", h.ID)
		}
	case <-time.After(time.Second):
		t.Fatalf("system handler was never invoked")
	}
	deadline := time.Now().Add(time.Second)
	for !tr.FWInitDone() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !tr.FWInitDone() {
		t.Fatalf("FWInitDone() = false after EVENT_INIT_DONE")
	}

	bus.Inject(Alloc(ClassUMAC, uint16(EvIfflagsStatus), 3, nil))
	select {
	case h := <-umacCh:
		if h.WdevID != 3 {
			t.Fatalf("umac handler got WdevID %d, want 3", h.WdevID)
		}
	case <-time.After(time.Second):
		t.Fatalf("umac handler was never invoked")
	}

	bus.Inject(Alloc(ClassData, uint16(EvRxBuff), 0, []byte{9}))
	select {
	case <-dataCh:
	case <-time.After(time.Second):
		t.Fatalf("data handler was never invoked")
	}
}

func TestSendRefusesUMACClassBeforeInitDone(t *testing.T) {
	bus := loopback.New(1<<20, nil)
	tr := New(bus, nil)
	defer tr.Close()
	tr.ResetInitState()

	if err := tr.Send(ClassUMAC, 0, 0, nil); err == nil {
		t.Fatalf("Send(ClassUMAC) before fw_init_done: expected error, got nil")
	}
}
