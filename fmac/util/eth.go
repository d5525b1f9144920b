// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"encoding/binary"
	"fmt"

	"gvisor.dev/gvisor/pkg/tcpip"
	"gvisor.dev/gvisor/pkg/tcpip/header"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
)

// MAC is a 6-byte hardware address.
type MAC [6]byte

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// Equal compares two addresses byte-for-byte (spec §4.6 ether_addr_equal).
func (m MAC) Equal(o MAC) bool {
	return m == o
}

// IsMulticast reports whether the low bit of the first octet is set (spec
// §4.6 is_multicast_addr).
func (m MAC) IsMulticast() bool {
	return m[0]&0x01 != 0
}

// EthernetHeaderLen is the size of a plain Ethernet header (dst, src, type).
const EthernetHeaderLen = header.EthernetMinimumSize // 14

// EthernetTypeThreshold distinguishes a length field (<0x0600) from an
// ethertype (§8 round-trip law, §4.6 get_skip_header_bytes).
const EthernetTypeThreshold = 0x0600

// TxGetEthType returns the ethertype carried in an outgoing Ethernet buffer
// (spec §4.6 tx_get_eth_type: bytes 12-13, big-endian).
func TxGetEthType(eth []byte) (uint16, error) {
	if len(eth) < EthernetHeaderLen {
		return 0, fmt.Errorf("util: short ethernet header")
	}
	return binary.BigEndian.Uint16(eth[12:14]), nil
}

// RxGetEthType returns the ethertype carried in the LLC/SNAP area of a
// received frame (spec §4.6 rx_get_eth_type: bytes 6-7 of that area).
func RxGetEthType(llc []byte) (uint16, error) {
	if len(llc) < 8 {
		return 0, fmt.Errorf("util: short LLC/SNAP header")
	}
	return binary.BigEndian.Uint16(llc[6:8]), nil
}

// GetSkipHeaderBytes returns the number of LLC/SNAP or Bridge-Tunnel bytes
// to skip before the payload, per spec §4.6 get_skip_header_bytes.
func GetSkipHeaderBytes(ethType uint16) int {
	switch {
	case ethType == 0x80F3 /* AARP */, ethType == 0x8137 /* IPX */:
		return 2 + 6
	case ethType >= EthernetTypeThreshold:
		return 2 + 6
	default:
		return 2
	}
}

// Dot11FrameControl bit positions relevant to ToDS/FromDS classification.
const (
	FCToDS   = 0x01
	FCFromDS = 0x02
)

// Dot11Header models the 4-address form of an IEEE 802.11 MAC header (spec
// §3).
type Dot11Header struct {
	FrameControl uint16
	DurationID   uint16
	Addr1        MAC
	Addr2        MAC
	Addr3        MAC
	SeqControl   uint16
	Addr4        MAC // only present in the 4-address form
}

// ToDS/FromDS reports the DS bits of the frame control field.
func (h *Dot11Header) ToDS() bool   { return h.FrameControl&FCToDS != 0 }
func (h *Dot11Header) FromDS() bool { return h.FrameControl&FCFromDS != 0 }

// HeaderLen returns the on-wire length of the header: 24 bytes for the
// 1-to-3-address forms, 30 when both ToDS and FromDS are set (4-address
// form is used on WDS/mesh links).
func (h *Dot11Header) HeaderLen() int {
	if h.ToDS() && h.FromDS() {
		return 30
	}
	return 24
}

// dot11SrcDst derives the Ethernet src/dst pair from the ToDS/FromDS
// classification table of spec §6.
func dot11SrcDst(h *Dot11Header) (src, dst MAC) {
	switch {
	case h.ToDS() && h.FromDS():
		return h.Addr4, h.Addr1
	case !h.ToDS() && h.FromDS():
		return h.Addr3, h.Addr1
	case h.ToDS() && !h.FromDS():
		return h.Addr2, h.Addr3
	default:
		return h.Addr2, h.Addr1
	}
}

// ConvertToEth rewrites the 802.11 header fronting an nwb's payload into an
// Ethernet header, per spec §4.4 step 3 (MPDU) and §4.6 convert_to_eth. The
// nwb is assumed to already have had the 802.11 header and LLC/SNAP/Bridge-
// Tunnel bytes pulled off, leaving only the L3 payload; ethType is the value
// obtained from RxGetEthType (or the accumulated payload length when below
// EthernetTypeThreshold, per spec §6's proto-field rule).
func ConvertToEth(n *NWB, h *Dot11Header, ethType uint16) error {
	src, dst := dot11SrcDst(h)

	proto := ethType
	if ethType < EthernetTypeThreshold {
		proto = uint16(n.DataSize())
	}

	hdr, err := n.Push(EthernetHeaderLen)
	if err != nil {
		return err
	}

	eth := header.Ethernet(hdr)
	eth.Encode(&header.EthernetFields{
		SrcAddr: tcpip.LinkAddress(src[:]),
		DstAddr: tcpip.LinkAddress(dst[:]),
		Type:    tcpip.NetworkProtocolNumber(proto),
	})

	return nil
}

// AMSDUSubframeHeaderLen is the size of an AMSDU sub-frame header (dst, src,
// length).
const AMSDUSubframeHeaderLen = 14

// ConvertAMSDUToEth converts a single AMSDU sub-frame, already positioned at
// the start of n's data (dst, src, len, LLC/SNAP, payload), into an Ethernet
// frame in place, per spec §4.6 convert_amsdu_to_eth / §8's round-trip law.
func ConvertAMSDUToEth(n *NWB) error {
	sub, err := n.Pull(AMSDUSubframeHeaderLen)
	if err != nil {
		return err
	}

	var dst, src MAC
	copy(dst[:], sub[0:6])
	copy(src[:], sub[6:12])

	ethType, err := RxGetEthType(n.Data())
	if err != nil {
		return err
	}

	skip := GetSkipHeaderBytes(ethType)
	if _, err := n.Pull(skip); err != nil {
		return err
	}

	proto := ethType
	if ethType < EthernetTypeThreshold {
		proto = uint16(n.DataSize())
	}

	hdr, err := n.Push(EthernetHeaderLen)
	if err != nil {
		return err
	}

	eth := header.Ethernet(hdr)
	eth.Encode(&header.EthernetFields{
		SrcAddr: tcpip.LinkAddress(src[:]),
		DstAddr: tcpip.LinkAddress(dst[:]),
		Type:    tcpip.NetworkProtocolNumber(proto),
	})

	return nil
}
