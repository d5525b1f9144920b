// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import "github.com/nrfconnect/nrf700x-fmac/fmac"

// Ethertypes relevant to TID derivation (spec §4.6 get_tid).
const (
	EthPVLAN  = 0x8100 // 802.1Q
	EthPVLAN2 = 0x88A8 // 802.1ad
	EthPMPLSU = 0x8847 // MPLS unicast
	EthPMPLSM = 0x8848 // MPLS multicast
	EthPIPv4  = 0x0800
	EthPIPv6  = 0x86DD
	EthP8021  = 0x8917 // 802.21
)

// tidToAC is the canonical 802.1D TID→AC table (spec §4.6).
var tidToAC = [8]fmac.AC{
	fmac.ACBE, fmac.ACBK, fmac.ACBK, fmac.ACBE,
	fmac.ACVI, fmac.ACVI, fmac.ACVO, fmac.ACVO,
}

// ACFromTID maps a TID (0..7) to its access category.
func ACFromTID(tid int) fmac.AC {
	if tid < 0 || tid > 7 {
		return fmac.ACBE
	}
	return tidToAC[tid]
}

// GetTID derives the traffic identifier for an outgoing Ethernet frame, per
// spec §4.6 get_tid. eth is the full Ethernet frame (header + payload).
func GetTID(eth []byte) int {
	ethType, err := TxGetEthType(eth)
	if err != nil {
		return 0
	}

	payload := eth[EthernetHeaderLen:]

	switch ethType {
	case EthPVLAN, EthPVLAN2:
		if len(payload) < 2 {
			return 0
		}
		return int(payload[0] >> 5)

	case EthPMPLSU, EthPMPLSM:
		if len(payload) < 4 {
			return 0
		}
		return int((payload[2] >> 1) & 0x7)

	case EthPIPv4:
		if len(payload) < 2 {
			return 0
		}
		tos := payload[1]
		dscp := tos & 0xfc
		return int(dscp >> 5)

	case EthPIPv6:
		if len(payload) < 2 {
			return 0
		}
		dsfield := (uint16(payload[0])<<8 | uint16(payload[1])) >> 4 & 0xff
		dscp := byte(dsfield) & 0xfc
		return int(dscp >> 5)

	case EthP8021:
		return 7

	default:
		return 0
	}
}
