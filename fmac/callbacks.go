// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fmac

// Callbacks is the per-VIF capability set the OS side of the driver
// implements (spec §6 "OS interface"). It replaces the original's opaque
// `void*` callback table and OS handle (spec §9 design note): a stable
// interface value held by the VIF, with the OS context passed explicitly
// by the caller that constructs it.
type Callbacks interface {
	// RxFrame delivers a converted Ethernet frame to the network stack.
	RxFrame(frame []byte)

	// CarrierStateChanged reports a carrier on/off transition.
	CarrierStateChanged(on bool)

	// MgmtTxStatus reports the outcome of a management frame send.
	MgmtTxStatus(cookie uint64, acked bool)

	// ScanStarted/ScanDone/ScanAborted report scan lifecycle events.
	ScanStarted()
	ScanDone()
	ScanAborted()

	// ScanDisplayResult delivers one scan result; moreResults mirrors
	// spec §6's "seq != 0 ⇒ more_results".
	ScanDisplayResult(bssid [6]byte, moreResults bool)

	// ProcessRSSIFromRx is invoked once per RX cluster carrying data
	// packets (spec §4.4).
	ProcessRSSIFromRx(rssi int8)

	// SnifferCallback delivers a raw monitor-mode frame, already
	// filtered by the VIF's packet filter when in promiscuous mode
	// (spec §4.4 step 5). Implementations for non-monitor VIFs may be a
	// no-op.
	SnifferCallback(frame []byte)
}

// NopCallbacks is a Callbacks implementation that discards everything,
// useful for VIFs that don't need OS delivery (e.g. in tests).
type NopCallbacks struct{}

func (NopCallbacks) RxFrame([]byte)                           {}
func (NopCallbacks) CarrierStateChanged(bool)                 {}
func (NopCallbacks) MgmtTxStatus(uint64, bool)                {}
func (NopCallbacks) ScanStarted()                             {}
func (NopCallbacks) ScanDone()                                {}
func (NopCallbacks) ScanAborted()                             {}
func (NopCallbacks) ScanDisplayResult(bssid [6]byte, more bool) {}
func (NopCallbacks) ProcessRSSIFromRx(int8)                   {}
func (NopCallbacks) SnifferCallback([]byte)                   {}
