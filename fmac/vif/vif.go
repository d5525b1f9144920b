// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package vif implements the virtual-interface table of spec §4.2.
package vif

import (
	"time"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/peer"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
)

// VIF is a per-virtual-interface context (spec §3).
type VIF struct {
	Type   fmac.VIFType
	Index  int
	MAC    util.MAC
	BSSID  util.MAC
	OpState      fmac.OpState
	CarrierState fmac.CarrierState

	// GroupwiseCipher is the negotiated groupwise cipher suite.
	GroupwiseCipher uint32
	// PacketFilter, when non-nil, restricts sniffer delivery in
	// promiscuous/monitor mode (spec §4.4 step 5).
	PacketFilter *uint32

	// OS is the capability set this VIF delivers frames/events through
	// (spec §6 "OS interface"); replaces the original's opaque OS handle.
	OS fmac.Callbacks

	ifflags *umac.Notifier
}

func (v *VIF) setIfflags(ok bool) {
	if ok {
		v.ifflags.Signal()
	}
}

// isSTALike/isAPLike classify a VIF type against the per-role caps (spec
// §4.2).
func isSTALike(t fmac.VIFType) bool {
	switch t {
	case fmac.VIFTypeSTA, fmac.VIFTypeP2PClient:
		return true
	}
	return false
}

func isAPLike(t fmac.VIFType) bool {
	switch t {
	case fmac.VIFTypeAP, fmac.VIFTypeAPVLAN, fmac.VIFTypeP2PGO:
		return true
	}
	return false
}

// Table is the device-owned VIF table: vif_ctx[MAX_NUM_VIFS].
type Table struct {
	slots     [fmac.MaxNumVIFs]*VIF
	staCount  int
	apCount   int
	transport *umac.Transport
	peers     *peer.Table
}

// New creates an empty VIF table bound to transport (for CMD_NEW_INTERFACE/
// CMD_SET_IFFLAGS) and peers (for the AP broadcast pseudo-peer toggle).
func New(transport *umac.Transport, peers *peer.Table) *Table {
	return &Table{transport: transport, peers: peers}
}

// Get returns the slot at idx, or nil if unset/out of range.
func (t *Table) Get(idx int) *VIF {
	if idx < 0 || idx >= fmac.MaxNumVIFs {
		return nil
	}
	return t.slots[idx]
}

// AddVIF implements spec §4.2 add_vif. Index 0 is considered created by
// firmware default and is never commanded; any other index sends
// CMD_NEW_INTERFACE.
func (t *Table) AddVIF(idx int, typ fmac.VIFType, mac util.MAC, os fmac.Callbacks) (*VIF, error) {
	if idx < 0 || idx >= fmac.MaxNumVIFs {
		return nil, fmac.ErrInvalidArgument
	}

	if t.slots[idx] != nil {
		return nil, fmac.ErrAlreadyExists
	}

	if isSTALike(typ) && t.staCount >= fmac.MaxNumSTAs {
		return nil, fmac.ErrCapExceeded
	}

	if isAPLike(typ) && t.apCount >= fmac.MaxNumAPs {
		return nil, fmac.ErrCapExceeded
	}

	v := &VIF{
		Type:    typ,
		Index:   idx,
		MAC:     mac,
		OS:      os,
		ifflags: umac.NewNotifier(),
	}

	if idx != 0 {
		body := make([]byte, 7)
		copy(body[0:6], v.MAC[:])
		body[6] = byte(typ)

		if err := t.transport.Send(umac.ClassUMAC, uint16(umac.CmdNewInterface), uint32(idx), body); err != nil {
			return nil, err
		}
	}

	t.slots[idx] = v

	if isSTALike(typ) {
		t.staCount++
	}
	if isAPLike(typ) {
		t.apCount++
	}

	return v, nil
}

// DelVIF implements spec §4.2 del_vif.
func (t *Table) DelVIF(idx int) error {
	v := t.Get(idx)
	if v == nil {
		return fmac.ErrNotFound
	}

	if idx != 0 {
		if err := t.transport.Send(umac.ClassUMAC, uint16(umac.CmdDelInterface), uint32(idx), nil); err != nil {
			return err
		}
	}

	if t.peers != nil {
		t.peers.Flush(idx)
	}

	if isSTALike(v.Type) {
		t.staCount--
	}
	if isAPLike(v.Type) {
		t.apCount--
	}

	t.slots[idx] = nil

	return nil
}

// ChgVIF implements spec §4.2 chg_vif: changes the VIF type/BSSID in place.
func (t *Table) ChgVIF(idx int, typ fmac.VIFType, bssid util.MAC) error {
	v := t.Get(idx)
	if v == nil {
		return fmac.ErrNotFound
	}

	body := make([]byte, 7)
	copy(body[0:6], bssid[:])
	body[6] = byte(typ)

	if err := t.transport.Send(umac.ClassUMAC, uint16(umac.CmdSetInterface), uint32(idx), body); err != nil {
		return err
	}

	v.Type = typ
	v.BSSID = bssid

	return nil
}

// ChgVIFState implements spec §4.2 chg_vif_state: sends CMD_SET_IFFLAGS
// then blocks up to IfflagsWaitSec for EVENT_IFFLAGS_STATUS to set
// v.ifflags. On an AP VIF the broadcast pseudo-peer is enabled/disabled
// to match.
func (t *Table) ChgVIFState(idx int, up bool) error {
	v := t.Get(idx)
	if v == nil {
		return fmac.ErrNotFound
	}

	v.ifflags.Reset()

	body := []byte{0}
	if up {
		body[0] = 1
	}

	if err := t.transport.Send(umac.ClassUMAC, uint16(umac.CmdSetIfflags), uint32(idx), body); err != nil {
		return err
	}

	if err := v.ifflags.Wait(fmac.IfflagsWaitSec * time.Second); err != nil {
		return err
	}

	if up {
		v.OpState = fmac.OpStateUp
	} else {
		v.OpState = fmac.OpStateDown
	}

	if isAPLike(v.Type) && t.peers != nil {
		if up {
			t.peers.Add(idx, util.MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, true, false, false)
		} else {
			t.peers.Remove(idx, fmac.MaxPeers)
		}
	}

	return nil
}

// OnIfflagsStatus is the UMAC event handler for EVENT_IFFLAGS_STATUS: a
// negative status means the RPU rejected the change (spec §6: "status < 0
// ⇒ rejected"), in which case the notifier still fires (so the caller's
// Wait returns) but OpState is left untouched by the caller reading the
// error.
func (t *Table) OnIfflagsStatus(idx int, status int32) {
	v := t.Get(idx)
	if v == nil {
		return
	}
	v.setIfflags(true)
}

// SetVIFMACAddr implements spec §4.2 set_vif_macaddr.
//
// The original (nrf_wifi_if_set_config_zep) dereferences its device
// argument before checking it for nil; spec §9 flags this as a pre-existing
// bug and requires the fix, so the nil check here runs first.
func (t *Table) SetVIFMACAddr(idx int, mac util.MAC) error {
	v := t.Get(idx)
	if v == nil {
		return fmac.ErrNotFound
	}

	if err := t.transport.Send(umac.ClassUMAC, uint16(umac.CmdChangeMacaddr), uint32(idx), mac[:]); err != nil {
		return err
	}

	v.MAC = mac

	return nil
}
