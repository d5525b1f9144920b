// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package hal defines the contract of the on-chip bus HAL that the FMAC and
// cracen drivers talk to. Per spec §1 the bus HAL (hal_*) is explicitly out
// of scope and treated as an opaque channel: it can send control commands,
// map/unmap RX/TX buffers to bus-addressable memory, and deliver
// asynchronous events. Nothing in this package encodes UMAC or cracen wire
// formats; callers own envelope construction and parsing.
package hal

import "context"

// Bus is the capability set the core driver requires from the bus HAL.
// Implementations run on a distinct execution context (spec §5: "Event/bus-HAL
// context") and must not block the caller beyond the HAL's own send latency.
type Bus interface {
	// Send hands a fully built command envelope to the HAL control
	// channel. Ownership of buf transfers to the HAL for the duration of
	// the send, matching spec §4.3's "ownership transfers to the HAL".
	Send(buf []byte) error

	// Map makes data bus-addressable and returns its bus (physical)
	// address. The buffer is owned by the RPU until the matching Unmap,
	// per spec §5's shared-resource policy.
	Map(data []byte) (addr uint32, err error)

	// Unmap releases a previously mapped bus address.
	Unmap(addr uint32) error

	// Events returns the channel asynchronous event envelopes are
	// delivered on, in RPU-send order (spec §4.3 ordering guarantee).
	Events() <-chan []byte

	// Wait blocks until ctx is done or the HAL reports the bus closed,
	// used by callers that wait on completion events pushed through
	// Events rather than polling.
	Wait(ctx context.Context) error
}

// AEADAccelerator is the narrower capability cracen's AEAD engine needs from
// the on-chip accelerator: submit a job and block for its result, mirroring
// the teacher's CAAM job ring (enqueue, then wait for a completion
// register), per spec §5's "AEAD operations block on bus-level completion
// via the HAL's wait primitive".
type AEADAccelerator interface {
	Submit(job []byte) (result []byte, err error)
}
