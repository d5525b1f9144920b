// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package tx

import (
	"encoding/binary"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
)

// StartXmit implements spec §4.5.4's start_xmit: reject anything shorter
// than an Ethernet header, classify the destination into a peer id and
// AC, wrap it as a Frame, and hand it to tx. A broadcast/multicast
// receiver address always classifies to AC_MC regardless of TID, ahead of
// any QoS check; a unicast peer that doesn't support QoS is pinned to BE
// instead of trusting the frame's TID. vifIdx addresses the owning VIF for
// command routing.
func (p *Path) StartXmit(vifIdx int, dst, src util.MAC, ethType uint16, tid int, payload *util.NWB) fmac.TxResult {
	if payload.DataSize() < util.EthernetHeaderLen {
		payload.Free()
		return fmac.TxFailed
	}

	peerID := p.peers.GetID(dst)
	if peerID == -1 {
		payload.Free()
		return fmac.TxFailed
	}

	var ac fmac.AC
	switch {
	case peerID == fmac.MaxPeers:
		ac = fmac.ACMC
	default:
		if e := p.peers.Entry(peerID); e != nil && e.QoSSupported {
			ac = util.ACFromTID(tid)
		} else {
			ac = fmac.ACBE
		}
	}

	emergency := tid == fmac.ACTWTPriorityEmergency

	f := &Frame{NWB: payload, Dst: dst, Src: src, EthType: ethType, TID: tid, Emergency: emergency}

	return p.tx(vifIdx, peerID, ac, f)
}

// tx implements spec §4.5.4's tx: enqueue, then (PS and backpressure
// permitting) immediately try to drain the queue for (peer,ac) into a
// descriptor.
func (p *Path) tx(vifIdx, peerID int, ac fmac.AC, f *Frame) fmac.TxResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e := p.peers.Entry(peerID); e != nil && e.PSState == fmac.PSMode && !f.Emergency {
		if err := p.enqueue(peerID, ac, f); err != nil {
			return fmac.TxFailed
		}
		return fmac.TxQueued
	}

	if err := p.enqueue(peerID, ac, f); err != nil {
		return fmac.TxFailed
	}

	if p.outstanding[acIndex(ac)] >= p.cfg.NumTxTokensPerAC && !p.canAggregateMore(peerID, ac) {
		return fmac.TxQueued
	}

	if !p.twt.CanXmit(f.Emergency) {
		return fmac.TxQueued
	}

	if err := p.pendingProcess(vifIdx, ac); err != nil {
		return fmac.TxQueued
	}

	return fmac.TxDone
}

// canAggregateMore reports whether the outstanding descriptor for (peer,ac)
// could still absorb more frames instead of needing a fresh one (spec
// §4.5.4 step 3's backpressure exception).
func (p *Path) canAggregateMore(peerID int, ac fmac.AC) bool {
	for i := range p.descs {
		d := &p.descs[i]
		if d.peerID == peerID && d.ac == ac && len(d.frames) < p.cfg.MaxTxAggregation {
			return true
		}
	}
	return false
}

// pendingProcess implements spec §4.5.4's tx_pending_process: pick a peer
// opportunistically for ac, coalesce what it has queued, acquire a
// descriptor and submit the command. Must be called with mu held.
func (p *Path) pendingProcess(vifIdx int, ac fmac.AC) error {
	peerID := p.peerOppGet(ac)
	if peerID == -1 {
		return fmac.ErrNotFound
	}

	frames := p.buildCoalesce(peerID, ac)
	if len(frames) == 0 {
		return nil
	}

	desc, err := p.descGet(ac)
	if err != nil {
		col := acIndex(ac)
		p.pendingQ[peerID][col] = append(frames, p.pendingQ[peerID][col]...)
		p.syncPendBitmap(peerID, ac)
		return err
	}

	if err := p.cmdInit(vifIdx, desc, peerID, ac, frames); err != nil {
		p.descFree(desc, ac)
		for _, f := range frames {
			f.NWB.Free()
		}
		return err
	}

	p.descs[desc].frames = frames
	p.descs[desc].peerID = peerID

	return nil
}

// cmdInit implements spec §4.5.4's tx_cmd_init: map each coalesced frame's
// buffer onto the bus and send one CMD_TX_BUFF descriptor naming them all.
// Wire format: desc(1) peerID(1) ac(1) numFrames(1), then per frame
// addr(4) length(2).
func (p *Path) cmdInit(vifIdx, desc, peerID int, ac fmac.AC, frames []*Frame) error {
	body := make([]byte, 4+6*len(frames))
	body[0] = byte(desc)
	body[1] = byte(peerID)
	body[2] = byte(ac)
	body[3] = byte(len(frames))

	base := desc * p.cfg.MaxTxAggregation

	for i, f := range frames {
		addr, err := p.transport.Map(f.NWB.Data())
		if err != nil {
			for j := 0; j < i; j++ {
				p.transport.Unmap(p.bufs[base+j].addr)
				p.bufs[base+j] = bufInfo{}
			}
			return err
		}

		p.bufs[base+i] = bufInfo{addr: addr, mapped: true}

		off := 4 + i*6
		binary.LittleEndian.PutUint32(body[off:off+4], addr)
		binary.LittleEndian.PutUint16(body[off+4:off+6], uint16(f.NWB.DataSize()))
	}

	return p.transport.SendData(uint16(umac.CmdTxBuff), uint32(vifIdx), body)
}

// OnTxBuffDone is the DATA-class EVENT_TX_BUFF_DONE handler (spec §4.5.5):
// unmap and free every frame of the named descriptor, free the descriptor
// itself, and try to refill the AC it freed up (re-firing tx_pending_process
// once immediately if TWT is awake).
func (p *Path) OnTxBuffDone(vifIdx int, body []byte) {
	if len(body) < 1 {
		return
	}
	desc := int(body[0])

	p.mu.Lock()

	if desc < 0 || desc >= len(p.descs) {
		p.mu.Unlock()
		return
	}

	d := &p.descs[desc]
	ac := d.ac
	base := desc * p.cfg.MaxTxAggregation

	for i, f := range d.frames {
		p.transport.Unmap(p.bufs[base+i].addr)
		p.bufs[base+i] = bufInfo{}
		f.NWB.Free()
		p.totalTxDonePkts++
	}
	d.frames = nil
	d.peerID = -1

	p.descFree(desc, ac)

	if p.twt.Awake() {
		p.pendingProcess(vifIdx, ac)
	}

	p.mu.Unlock()
}

// OnPMMode is the DATA-class EVENT_PM_MODE handler: a peer transitioning
// into power-save is appended to the AP wakeup client queue (spec §4.5.6);
// leaving power-save removes it and wakes its queues immediately.
func (p *Path) OnPMMode(vifIdx, peerID int, psMode bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.peers.Entry(peerID)
	if e == nil || e.ID == -1 {
		return
	}

	if psMode {
		e.PSState = fmac.PSMode
		p.wakeupClientQ = append(p.wakeupClientQ, peerID)
		return
	}

	e.PSState = fmac.PSActive
	for i, id := range p.wakeupClientQ {
		if id == peerID {
			p.wakeupClientQ = append(p.wakeupClientQ[:i], p.wakeupClientQ[i+1:]...)
			break
		}
	}

	for ac := fmac.AC(0); ac < fmac.ACMax; ac++ {
		if !p.queueEmpty(peerID, ac) {
			p.pendingProcess(vifIdx, ac)
		}
	}
}

// OnPSGetFrames is the DATA-class EVENT_PS_GET_FRAMES handler: the RPU is
// asking for up to count buffered frames for a PS-parked peer (spec
// §4.5.6). Grants one PS token per requested frame and drains the peer's
// queues until count rounds have run or they are empty. No frame is marked
// End-Of-Service-Period: the CMD_TX_BUFF body built by cmdInit has no EOSP
// field.
func (p *Path) OnPSGetFrames(vifIdx, peerID, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.peers.Entry(peerID)
	if e == nil || e.ID == -1 {
		return
	}

	e.PSTokenCount += count

	for i := 0; i < count; i++ {
		drained := true
		for ac := fmac.AC(0); ac < fmac.ACMax; ac++ {
			if !p.queueEmpty(peerID, ac) {
				drained = false
				p.pendingProcess(vifIdx, ac)
			}
		}
		if drained {
			break
		}
	}
}
