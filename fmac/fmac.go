// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package fmac implements the host-side "Full MAC" layer of an nRF700x-class
// Wi-Fi driver: it mediates between an OS network interface and a radio
// co-processor (the RPU) over the message-passing bus HAL defined in
// package hal. This file carries the types and named knobs shared by every
// fmac subpackage, mirroring how the teacher (usbarmory-tamago) keeps
// per-SoC register/constant tables alongside its driver structs.
package fmac

import "errors"

// Access categories, highest to lowest priority, plus the multicast
// pseudo-AC. Order matches spec §3 and the 802.1D TID→AC table (§4.6).
type AC int

const (
	ACVO AC = iota
	ACVI
	ACBE
	ACBK
	ACMC
)

func (ac AC) String() string {
	switch ac {
	case ACVO:
		return "VO"
	case ACVI:
		return "VI"
	case ACBE:
		return "BE"
	case ACBK:
		return "BK"
	case ACMC:
		return "MC"
	default:
		return "?"
	}
}

// ACMax is the number of real (non-multicast) access categories.
const ACMax = 4

// VIFType enumerates the virtual-interface roles of spec §3.
type VIFType int

const (
	VIFTypeInvalid VIFType = iota
	VIFTypeSTA
	VIFTypeAP
	VIFTypeAPVLAN
	VIFTypeMeshPoint
	VIFTypeP2PClient
	VIFTypeP2PGO
	VIFTypeMonitor
	VIFTypeRawTX
	VIFTypePromisc
)

// OpState is a VIF's operation state.
type OpState int

const (
	OpStateDown OpState = iota
	OpStateUp
)

// CarrierState is a VIF's carrier state.
type CarrierState int

const (
	CarrierOff CarrierState = iota
	CarrierOn
)

// PSState is a peer's power-save state.
type PSState int

const (
	PSActive PSState = iota
	PSMode
)

// Named environment/config knobs (spec §6). Treated as defaults on Config;
// every field can be overridden by a caller the way enet.ENET.Init defaults
// RingSize/MAC only when left zero.
const (
	MaxNumVIFs              = 8
	MaxNumSTAs              = 4
	MaxNumAPs               = 2
	MaxPeers                = 32 // slot MaxPeers itself is the broadcast pseudo-peer
	MaxSWPeers              = MaxPeers + 1
	MaxNumOfRxQueues        = 3
	RxBufHeadroom           = 64
	TxBufHeadroom           = 64
	TxDescBucketBound       = 4
	MaxTxPendingQLen        = 64
	MaxTxAggregation        = 16
	AvailAMPDULenPerToken   = 16384
	NumTxTokensPerAC        = 4
	FMACStatsRecvTimeoutSec = 2
	HWDelayMS               = 2
	SWDelayMS               = 1
	BCNTimeoutMS            = 4000
	ACTWTPriorityEmergency  = 100

	IfflagsWaitSec = 10
	InitWaitSec    = 5
)

// Error kinds from spec §7, shared by every fmac subpackage. cracen defines
// its own richer Status type for the crypto driver (§7's AEAD/PAKE/KMU
// kinds); the data-plane/control-plane kinds here are plain sentinel errors,
// matching spec's "local, non-fatal" propagation rule for most of them.
var (
	ErrInvalidArgument   = errors.New("fmac: invalid argument")
	ErrNoFreeSlot        = errors.New("fmac: no free slot")
	ErrNotFound          = errors.New("fmac: not found")
	ErrAlreadyExists     = errors.New("fmac: already exists")
	ErrQueueFull         = errors.New("fmac: pending queue full")
	ErrBadState          = errors.New("fmac: bad state")
	ErrTimeout           = errors.New("fmac: completion timed out")
	ErrHardwareFailure   = errors.New("fmac: hardware failure")
	ErrCapExceeded       = errors.New("fmac: role count cap exceeded")
	ErrInsufficientSpace = errors.New("fmac: insufficient descriptor space")
)

// TxResult is the outcome of tx(), matching spec §4.5.4.
type TxResult int

const (
	TxQueued TxResult = iota
	TxDone
	TxFailed
)
