// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package umac implements the UMAC command/event transport of spec §4.3:
// envelope construction/sizing/send of host→RPU messages, and parsing/
// dispatch of the event classes enumerated in spec §6. The command send
// shape (build a descriptor, submit it on the bus, optionally block for a
// completion) is grounded in the teacher's soc/nxp/caam/job.go job ring.
package umac

import "encoding/binary"

// Class is the top-level envelope type (spec §6).
type Class uint8

const (
	ClassSystem Class = iota
	ClassUMAC
	ClassData
)

// Cmd enumerates the UMAC command subset of spec §6.
type Cmd uint16

const (
	CmdInit Cmd = iota
	CmdDeinit
	CmdScan
	CmdAbortScan
	CmdGetScanResults
	CmdAuth
	CmdAssoc
	CmdDeauth
	CmdDisassoc
	CmdNewKey
	CmdDelKey
	CmdSetKey
	CmdSetStation
	CmdNewStation
	CmdDelStation
	CmdStartAP
	CmdStopAP
	CmdSetBSS
	CmdSetBeacon
	CmdSetWiphy
	CmdSetInterface
	CmdNewInterface
	CmdDelInterface
	CmdSetIfflags
	CmdRegisterFrame
	CmdFrame
	CmdSetPowerSave
	CmdConfigTWT
	CmdTeardownTWT
	CmdGetReg
	CmdGetWiphy
	CmdGetStation
	CmdGetInterface
	CmdGetTxPower
	CmdGetChannel
	CmdGetPowerSaveInfo
	CmdRemainOnChannel
	CmdCancelRemainOnChannel
	CmdMcastFilter
	CmdSetQosMap
	CmdChangeMacaddr
	CmdConfigUAPSD
	CmdSetPowerSaveTimeout
	CmdSetListenInterval
	CmdConfigExtendedPS
	CmdPSExitStrategy
	CmdBtcoex
	CmdHeGiLtfConfig
	CmdTxFixDataRate
	CmdRawConfigMode
	CmdRawConfigFilter
	CmdChannel
	CmdTxBuff // data-class: descriptor send (spec §4.5.4)
	CmdRxBuffInit
	CmdRxBuffDeinit
)

// UMACEvent enumerates the control-event subset of spec §6.
type UMACEvent uint16

const (
	EvTriggerScanStart UMACEvent = iota
	EvScanDone
	EvScanAborted
	EvScanResult
	EvScanDisplayResult
	EvAuthenticate
	EvAssociate
	EvDeauthenticate
	EvDisassociate
	EvFrame
	EvFrameTxStatus
	EvUnprotDeauthenticate
	EvUnprotDisassociate
	EvNewStation
	EvDelStation
	EvIfflagsStatus
	EvNewInterface
	EvSetInterface
	EvCookieResp
	EvGetTxPower
	EvGetChannel
	EvGetStation
	EvNewWiphy
	EvCmdStatus
	EvBeaconHint
	EvConnect
	EvDisconnect
	EvGetReg
	EvRegChange
	EvGetPowerSaveInfo
	EvTWTSleep
	EvConfigTWT
	EvTeardownTWT
	EvRemainOnChannel
	EvCancelRemainOnChannel
	EvGetConnectionInfo
)

// DataEvent enumerates the data-plane event subset of spec §6/§4.4/§4.5.
type DataEvent uint16

const (
	EvRxBuff DataEvent = iota
	EvTxBuffDone
	EvCarrierOn
	EvCarrierOff
	EvPMMode
	EvPSGetFrames
)

// SystemEvent enumerates the system event subset of spec §4.3/§6.
type SystemEvent uint16

const (
	EvInitDone SystemEvent = iota
	EvDeinitDone
	EvStats
	EvRFTestStatus
	EvRadioCmdStatus
)

// Header is the common envelope header, {type, length, [wdev_id]} per spec
// §3/§6. wdev_id is encoded in every envelope, system ones included
// (system envelopes carry 0 there).
type Header struct {
	Class  Class
	ID     uint16
	Length uint16
	WdevID uint32
}

const headerLen = 1 + 2 + 2 + 4 // class + id + length + wdev_id

// Encode serializes the header, little-endian to match the original's
// packed-struct layout on a little-endian Cortex-M target.
func (h *Header) Encode(buf []byte) {
	buf[0] = byte(h.Class)
	binary.LittleEndian.PutUint16(buf[1:3], h.ID)
	binary.LittleEndian.PutUint16(buf[3:5], h.Length)
	binary.LittleEndian.PutUint32(buf[5:9], h.WdevID)
}

// DecodeHeader parses a header from buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerLen {
		return Header{}, errShortEnvelope
	}

	var h Header
	h.Class = Class(buf[0])
	h.ID = binary.LittleEndian.Uint16(buf[1:3])
	h.Length = binary.LittleEndian.Uint16(buf[3:5])
	h.WdevID = binary.LittleEndian.Uint32(buf[5:9])

	return h, nil
}
