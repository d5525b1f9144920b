// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package rx

import (
	"encoding/binary"
	"log"
	"sync"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/peer"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
	"github.com/nrfconnect/nrf700x-fmac/fmac/vif"
)

// rawEvent is one EVENT_RX_BUFF envelope, queued onto the worker goroutine
// (spec §4.4 "RX work-queue tasklet").
type rawEvent struct {
	desc    int // global descriptor id, resolved to (pool, slot) via mapDescToPool
	rxType  PacketType
	cluster bool
	peerID  int
	rssi    int8
	vifIdx  int
	payload []byte
}

// Path is the device-owned RX path: buffer pools, the worker goroutine and
// the peer/VIF tables it delivers into.
type Path struct {
	cfg       Config
	transport *umac.Transport
	peers     *peer.Table
	vifs      *vif.Table
	log       *log.Logger

	mu    sync.Mutex
	pools []*pool

	events chan rawEvent
	done   chan struct{}
}

// New creates an RX path, allocates and registers its buffer pools, and
// starts the worker goroutine. Registers itself as transport's data-class
// handler for EVENT_RX_BUFF.
func New(cfg Config, transport *umac.Transport, peers *peer.Table, vifs *vif.Table, logger *log.Logger) (*Path, error) {
	if logger == nil {
		logger = log.Default()
	}

	p := &Path{
		cfg:       cfg,
		transport: transport,
		peers:     peers,
		vifs:      vifs,
		log:       logger,
		events:    make(chan rawEvent, cfg.EventQueueDepth),
		done:      make(chan struct{}),
	}

	if err := p.initPools(); err != nil {
		return nil, err
	}

	transport.OnData(p.onData)
	go p.worker()

	return p, nil
}

// onData is transport's data-class dispatcher entry point; it only handles
// EVENT_RX_BUFF, decoding the wire envelope and queueing it for the worker.
// Wire format: desc(1, global descriptor id) rxType(1, clusterStartFlag
// OR'd in) peerID(1) rssi(1, int8) vifIdx(4) payload(rest).
func (p *Path) onData(ev umac.Header, body []byte) {
	if umac.DataEvent(ev.ID) != umac.EvRxBuff {
		return
	}
	if len(body) < 8 {
		p.log.Printf("rx: short EVENT_RX_BUFF body (%d bytes)", len(body))
		return
	}

	raw := rawEvent{
		desc:    int(body[0]),
		rxType:  PacketType(body[1] &^ clusterStartFlag),
		cluster: body[1]&clusterStartFlag != 0,
		peerID:  int(body[2]),
		rssi:    int8(body[3]),
		vifIdx:  int(binary.LittleEndian.Uint32(body[4:8])),
		payload: append([]byte(nil), body[8:]...),
	}

	select {
	case p.events <- raw:
	default:
		p.log.Printf("rx: event queue full, dropping descriptor %d", raw.desc)
	}
}

// worker is the RX work-queue tasklet: it drains queued events and
// dispatches each to process, one at a time, off the bus-HAL goroutine.
func (p *Path) worker() {
	for {
		select {
		case <-p.done:
			return
		case ev := <-p.events:
			p.process(ev)
		}
	}
}

// process implements spec §4.4's 5-step dispatch: convert per packet type,
// deliver to the owning VIF's callbacks, report RSSI once per cluster, then
// re-arm the descriptor. The frame bytes are taken from the event body; the
// descriptor's mapped buffer is not read, only replaced by the re-arm.
func (p *Path) process(ev rawEvent) {
	p.mu.Lock()
	poolID, slotIdx, ok := p.mapDescToPool(ev.desc)
	p.mu.Unlock()
	if !ok {
		p.log.Printf("rx: event for unknown descriptor %d", ev.desc)
		return
	}

	v := p.vifs.Get(ev.vifIdx)
	if v == nil {
		p.rearmLocked(poolID, slotIdx)
		return
	}

	switch ev.rxType {
	case PacketMPDU, PacketMSDUWithMAC, PacketMSDU:
		if e := p.peers.Entry(ev.peerID); e == nil || e.ID == -1 {
			p.rearmLocked(poolID, slotIdx)
			return
		}
	}

	if ev.cluster {
		v.OS.ProcessRSSIFromRx(ev.rssi)
	}

	switch ev.rxType {
	case PacketMPDU, PacketMSDUWithMAC:
		p.deliverMAC(v, ev)
	case PacketMSDU:
		v.OS.RxFrame(ev.payload)
	case PacketBeaconProbeResp:
		var bssid [6]byte
		copy(bssid[:], ev.payload)
		v.OS.ScanDisplayResult(bssid, false)
	case PacketRaw:
		if v.PacketFilter == nil || filterMatches(*v.PacketFilter, ev.payload) {
			v.OS.SnifferCallback(ev.payload)
		}
	}

	p.rearmLocked(poolID, slotIdx)
}

// deliverMAC parses the leading 802.11 header off ev.payload, strips
// LLC/SNAP (or AMSDU sub-frame headers, for an aggregated MSDU), rewrites
// it as an Ethernet frame, and delivers it (spec §4.4 step 3 / §4.6
// convert_to_eth, convert_amsdu_to_eth).
func (p *Path) deliverMAC(v *vif.VIF, ev rawEvent) {
	if len(ev.payload) < 24 {
		return
	}

	h := util.Dot11Header{
		FrameControl: binary.LittleEndian.Uint16(ev.payload[0:2]),
		DurationID:   binary.LittleEndian.Uint16(ev.payload[2:4]),
	}
	copy(h.Addr1[:], ev.payload[4:10])
	copy(h.Addr2[:], ev.payload[10:16])
	copy(h.Addr3[:], ev.payload[16:22])
	h.SeqControl = binary.LittleEndian.Uint16(ev.payload[22:24])

	hl := h.HeaderLen()
	if len(ev.payload) < hl {
		return
	}
	if hl > 24 {
		copy(h.Addr4[:], ev.payload[24:30])
	}

	body := ev.payload[hl:]
	n := util.AllocFromBytes(body, fmac.RxBufHeadroom)

	isAMSDU := len(body) >= util.AMSDUSubframeHeaderLen && ev.rxType == PacketMPDU && h.FrameControl&0x0080 != 0

	if isAMSDU {
		for n.DataSize() > 0 {
			if err := util.ConvertAMSDUToEth(n); err != nil {
				return
			}
			v.OS.RxFrame(append([]byte(nil), n.Data()...))
			if _, err := n.Pull(util.EthernetHeaderLen); err == nil {
				continue
			}
			break
		}
		return
	}

	ethType, err := util.RxGetEthType(n.Data())
	if err != nil {
		return
	}
	skip := util.GetSkipHeaderBytes(ethType)
	if _, err := n.Pull(skip); err != nil {
		return
	}
	if err := util.ConvertToEth(n, &h, ethType); err != nil {
		return
	}

	v.OS.RxFrame(n.Data())
}

// filterMatches applies a monitor-mode packet filter (spec §4.4 step 5): bit
// N of filter permits 802.11 frame-control type N (0=management, 1=control,
// 2=data).
func filterMatches(filter uint32, frame []byte) bool {
	if len(frame) < 2 {
		return false
	}
	fc := binary.LittleEndian.Uint16(frame[0:2])
	frameType := (fc >> 2) & 0x3
	return filter&(1<<frameType) != 0
}

func (p *Path) rearmLocked(poolID, desc int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.rearm(poolID, desc); err != nil {
		p.log.Printf("rx: failed to rearm pool=%d desc=%d: %v", poolID, desc, err)
	}
}

// Close stops the worker goroutine and releases all buffer pools.
func (p *Path) Close() {
	close(p.done)
	p.mu.Lock()
	p.deinitPools()
	p.mu.Unlock()
}
