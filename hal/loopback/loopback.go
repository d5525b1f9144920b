// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package loopback implements an in-process hal.Bus for tests and the
// cmd/nrf700xd demo, simulating an RPU by running a caller-supplied
// responder over every sent command. It is grounded on the teacher's
// soc/nxp/caam job ring (command in, wait for a result out) with the MMIO
// registers replaced by Go channels and busmem's bus-address bookkeeping.
package loopback

import (
	"context"
	"fmt"

	"github.com/nrfconnect/nrf700x-fmac/busmem"
)

// Responder is invoked for every command sent on the control channel; it
// may return zero or more event envelopes to be asynchronously delivered.
type Responder func(cmd []byte) (events [][]byte)

// Bus is a loopback implementation of hal.Bus.
type Bus struct {
	respond Responder
	events  chan []byte
	mem     *busmem.Region
	closed  chan struct{}
}

// New creates a loopback bus with the given address space size for buffer
// mapping and an optional responder (nil means commands are accepted but
// never produce events).
func New(addrSpace uint32, respond Responder) *Bus {
	if respond == nil {
		respond = func([]byte) [][]byte { return nil }
	}

	return &Bus{
		respond: respond,
		events:  make(chan []byte, 64),
		mem:     busmem.NewRegion(0x1000, addrSpace),
		closed:  make(chan struct{}),
	}
}

// Send implements hal.Bus.
func (b *Bus) Send(buf []byte) error {
	for _, ev := range b.respond(buf) {
		select {
		case b.events <- ev:
		default:
			return fmt.Errorf("loopback: event queue full")
		}
	}
	return nil
}

// Map implements hal.Bus.
func (b *Bus) Map(data []byte) (uint32, error) {
	addr, err := b.mem.Map(uint32(len(data)))
	if err != nil {
		return 0, err
	}
	return addr, nil
}

// Unmap implements hal.Bus.
func (b *Bus) Unmap(addr uint32) error {
	return b.mem.Unmap(addr)
}

// Events implements hal.Bus.
func (b *Bus) Events() <-chan []byte {
	return b.events
}

// Wait implements hal.Bus.
func (b *Bus) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.closed:
		return fmt.Errorf("loopback: bus closed")
	}
}

// Inject asynchronously delivers ev on the event channel, used by tests to
// simulate spontaneous RPU events not triggered by a command.
func (b *Bus) Inject(ev []byte) {
	b.events <- ev
}

// Close shuts the loopback bus down.
func (b *Bus) Close() {
	close(b.closed)
}
