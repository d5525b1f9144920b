// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package rx implements the RX data path of spec §4.4: buffer pools sized
// for small/medium/large MPDUs, descriptor-to-pool mapping, the 5-way event
// dispatch (MPDU / MSDU-with-MAC-header / MSDU / beacon-probe-response /
// raw monitor), descriptor re-arm, once-per-cluster RSSI reporting, and a
// worker goroutine standing in for the original's RX work-queue tasklet.
// The buffer-pool/descriptor-ring bookkeeping is grounded in the teacher's
// soc/nxp/enet/dma.go buffer descriptor ring.
package rx

import (
	"github.com/nrfconnect/nrf700x-fmac/fmac"
)

// PacketType is the RPU's classification of a delivered RX buffer (spec
// §4.4's 5-step dispatch).
type PacketType uint8

const (
	PacketMPDU PacketType = iota
	PacketMSDUWithMAC
	PacketMSDU
	PacketBeaconProbeResp
	PacketRaw
)

// clusterStartFlag, OR'd into the wire rxType byte, marks the first buffer
// of a new RX cluster (one PPDU's worth of MPDUs): RSSI is sampled and
// forwarded to the OS callback only for cluster-start buffers (spec §4.4
// "RSSI reported once per cluster").
const clusterStartFlag = 0x80

// PoolSpec describes one RX buffer pool (spec §4.4 "sized for small/medium/
// large MPDUs").
type PoolSpec struct {
	BufSize  int
	NumBufs  int
}

// Config carries the RX path's pool layout and queue depth.
type Config struct {
	Pools      []PoolSpec
	NumQueues  int
	EventQueueDepth int
}

// DefaultConfig returns the spec §6 default: three pools (small/medium/
// large) and fmac.MaxNumOfRxQueues queues.
func DefaultConfig() Config {
	return Config{
		Pools: []PoolSpec{
			{BufSize: 128, NumBufs: 16},
			{BufSize: 512, NumBufs: 16},
			{BufSize: 2048, NumBufs: 8},
		},
		NumQueues:       fmac.MaxNumOfRxQueues,
		EventQueueDepth: 64,
	}
}
