// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package umac

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/hal"
)

var errShortEnvelope = errors.New("umac: envelope shorter than header")

// Alloc builds a zero-initialized envelope of headerLen+len(body) bytes,
// per spec §4.3 umac_cmd_alloc, and copies body into it.
func Alloc(class Class, id uint16, wdevID uint32, body []byte) []byte {
	buf := make([]byte, headerLen+len(body))

	h := Header{Class: class, ID: id, Length: uint16(len(body)), WdevID: wdevID}
	h.Encode(buf)
	copy(buf[headerLen:], body)

	return buf
}

// Transport owns the bus HAL connection, the fw_init_done/fw_deinit_done
// completions, and per-class event dispatch. Its command-send shape mirrors
// soc/nxp/caam/job.go's jobRing.add: build a descriptor, hand it to the bus,
// and (for commands with a synchronous result) wait on a Notifier signaled
// from the event-processing side.
type Transport struct {
	bus hal.Bus
	log *log.Logger

	fwInitDone   atomic.Bool
	fwDeinitDone atomic.Bool

	mu       sync.Mutex
	dataFns  []func(ev Header, body []byte)
	umacFn   func(ev Header, body []byte)
	systemFn func(ev Header, body []byte)

	closed chan struct{}
}

// New creates a transport over bus and starts its event-processing
// goroutine (spec §5's "Event/bus-HAL context").
func New(bus hal.Bus, logger *log.Logger) *Transport {
	if logger == nil {
		logger = log.Default()
	}

	t := &Transport{bus: bus, log: logger, closed: make(chan struct{})}
	go t.run()

	return t
}

// OnUMAC/OnSystem register the per-class dispatch callback; the device
// package wires these during construction. OnData is multi-registrant
// (spec §4.4/§4.5: the RX and TX paths each own distinct DataEvent IDs
// within the same ClassData envelope stream), so every handler added via
// OnData is called for every data-class envelope and is expected to ignore
// IDs it does not own.
func (t *Transport) OnData(fn func(ev Header, body []byte)) {
	t.mu.Lock()
	t.dataFns = append(t.dataFns, fn)
	t.mu.Unlock()
}
func (t *Transport) OnUMAC(fn func(ev Header, body []byte))   { t.mu.Lock(); t.umacFn = fn; t.mu.Unlock() }
func (t *Transport) OnSystem(fn func(ev Header, body []byte)) { t.mu.Lock(); t.systemFn = fn; t.mu.Unlock() }

func (t *Transport) run() {
	for {
		select {
		case <-t.closed:
			return
		case raw, ok := <-t.bus.Events():
			if !ok {
				return
			}
			t.process(raw)
		}
	}
}

// process dispatches a single envelope by top-level class, per spec §4.3.
// Each envelope carries one event: the registered handlers decode a single
// event from body and do not walk a list of length-prefixed sub-events.
func (t *Transport) process(raw []byte) {
	h, err := DecodeHeader(raw)
	if err != nil {
		t.log.Printf("umac: dropping short envelope: %v", err)
		return
	}

	body := raw[headerLen:]
	if int(h.Length) > len(body) {
		t.log.Printf("umac: envelope length %d exceeds body %d, using the whole body", h.Length, len(body))
	} else {
		body = body[:h.Length]
	}

	switch h.Class {
	case ClassSystem:
		t.handleSystem(h, body)
	case ClassUMAC:
		t.mu.Lock()
		fn := t.umacFn
		t.mu.Unlock()
		if fn != nil {
			fn(h, body)
		} else {
			t.log.Printf("umac: unhandled UMAC event %d (no dispatcher registered)", h.ID)
		}
	case ClassData:
		t.mu.Lock()
		fns := append([]func(Header, []byte){}, t.dataFns...)
		t.mu.Unlock()
		for _, fn := range fns {
			fn(h, body)
		}
	default:
		t.log.Printf("umac: unknown envelope class %d", h.Class)
	}
}

// handleSystem implements spec §4.3's SYSTEM class: INIT_DONE/DEINIT_DONE
// flip their booleans, and every system event, STATS included, is then
// forwarded to the registered handler. There is no stats_req gate: the
// device handler stores each STATS body it receives, requested or not.
func (t *Transport) handleSystem(h Header, body []byte) {
	switch SystemEvent(h.ID) {
	case EvInitDone:
		t.fwInitDone.Store(true)
	case EvDeinitDone:
		t.fwDeinitDone.Store(true)
		t.fwInitDone.Store(false)
	}

	t.mu.Lock()
	fn := t.systemFn
	t.mu.Unlock()
	if fn != nil {
		fn(h, body)
	}
}

// FWInitDone reports whether the RPU has signaled INIT_DONE.
func (t *Transport) FWInitDone() bool { return t.fwInitDone.Load() }

// FWDeinitDone reports whether the RPU has signaled DEINIT_DONE.
func (t *Transport) FWDeinitDone() bool { return t.fwDeinitDone.Load() }

// ResetInitState clears both the fw_init_done and fw_deinit_done booleans,
// so that only a fresh INIT_DONE/DEINIT_DONE event sets them again.
func (t *Transport) ResetInitState() {
	t.fwInitDone.Store(false)
	t.fwDeinitDone.Store(false)
}

// Send implements spec §4.3's cmd_cfg: refuses UMAC-class control commands
// before fw_init_done; SYSTEM and DATA commands may be sent at any time
// (system commands are how initialization itself proceeds; data commands
// are not gated on fw_init_done at all).
func (t *Transport) Send(class Class, id uint16, wdevID uint32, body []byte) error {
	if class == ClassUMAC && !t.fwInitDone.Load() {
		return fmac.ErrBadState
	}

	return t.bus.Send(Alloc(class, id, wdevID, body))
}

// SendSystem is a convenience wrapper for system-class commands (always
// permitted, including during initialization).
func (t *Transport) SendSystem(id uint16, body []byte) error {
	return t.bus.Send(Alloc(ClassSystem, id, 0, body))
}

// SendData is a convenience wrapper for data-class commands.
func (t *Transport) SendData(id uint16, wdevID uint32, body []byte) error {
	return t.bus.Send(Alloc(ClassData, id, wdevID, body))
}

// Map/Unmap forward to the bus HAL, used by the RX/TX paths to make buffers
// bus-addressable (spec §4.4/§4.5).
func (t *Transport) Map(data []byte) (uint32, error) { return t.bus.Map(data) }
func (t *Transport) Unmap(addr uint32) error         { return t.bus.Unmap(addr) }

// Close stops the event-processing goroutine.
func (t *Transport) Close() { close(t.closed) }
