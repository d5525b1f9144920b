// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package tx

import (
	"github.com/nrfconnect/nrf700x-fmac/fmac"
)

// enqueue appends f to peer/ac's pending queue (spec §4.5.1 data_pending_txq),
// or prepends it when f is an emergency frame so it is served first. Returns
// ErrQueueFull at MaxTxPendingQLen (spec §4.5.1 edge case).
func (p *Path) enqueue(peerID int, ac fmac.AC, f *Frame) error {
	col := acIndex(ac)
	q := p.pendingQ[peerID][col]

	if len(q) >= p.cfg.MaxTxPendingQLen {
		return fmac.ErrQueueFull
	}

	if f.Emergency {
		q = append([]*Frame{f}, q...)
	} else {
		q = append(q, f)
	}
	p.pendingQ[peerID][col] = q

	if e := p.peers.Entry(peerID); e != nil {
		e.PendQBitmap |= 1 << uint(ac)
	}

	return nil
}

func (p *Path) queueEmpty(peerID int, ac fmac.AC) bool {
	return len(p.pendingQ[peerID][acIndex(ac)]) == 0
}

func (p *Path) syncPendBitmap(peerID int, ac fmac.AC) {
	e := p.peers.Entry(peerID)
	if e == nil {
		return
	}
	if p.queueEmpty(peerID, ac) {
		e.PendQBitmap &^= 1 << uint(ac)
	} else {
		e.PendQBitmap |= 1 << uint(ac)
	}
}

// peerOppGet implements spec §4.5.1's tx_curr_peer_opp_get: AC_MC always
// maps to the broadcast pseudo-peer; otherwise the AP wakeup-client queue
// takes priority (serving a peer with an outstanding PS token before
// falling back to round robin), else round robin over real peers, skipping
// anyone in PSMode and anyone with an empty queue for this AC. Returns -1
// when no peer has anything pending.
func (p *Path) peerOppGet(ac fmac.AC) int {
	if ac == fmac.ACMC {
		return fmac.MaxPeers
	}

	for _, id := range p.wakeupClientQ {
		e := p.peers.Entry(id)
		if e == nil || e.ID == -1 || e.PSTokenCount <= 0 {
			continue
		}
		if p.queueEmpty(id, ac) {
			continue
		}
		e.PSTokenCount--
		return id
	}

	start := p.currPeerOpp[ac]
	for i := 0; i < fmac.MaxPeers; i++ {
		id := (start + i) % fmac.MaxPeers

		e := p.peers.Entry(id)
		if e == nil || e.ID == -1 || e.PSState == fmac.PSMode {
			continue
		}
		if p.queueEmpty(id, ac) {
			continue
		}

		p.currPeerOpp[ac] = (id + 1) % fmac.MaxPeers
		return id
	}

	return -1
}

// buildCoalesce implements spec §4.5.3's aggregation rules: dequeue the
// head frame, then keep pulling subsequent frames from the same queue
// while the peer is non-legacy, destinations/sources match the head,
// none of them are emergency frames, TWT is awake, and the running size
// stays within AvailAMPDULenPerToken and MaxTxAggregation.
//
// If the head frame itself is non-emergency and TWT is asleep, it is
// dropped here rather than put back on the queue: the original exhibits
// this same behavior (tx_pending_process's aggregation loop has no
// list_add_tail for this case) and it is preserved as observed rather than
// silently fixed.
func (p *Path) buildCoalesce(peerID int, ac fmac.AC) []*Frame {
	col := acIndex(ac)
	q := p.pendingQ[peerID][col]
	if len(q) == 0 {
		return nil
	}

	head := q[0]

	if !head.Emergency && !p.twt.Awake() {
		p.pendingQ[peerID][col] = q[1:]
		p.syncPendBitmap(peerID, ac)
		return nil
	}

	list := []*Frame{head}
	totalLen := fmac.TxBufHeadroom + head.NWB.DataSize()

	e := p.peers.Entry(peerID)
	legacy := e != nil && e.IsLegacy

	if !legacy && !head.Emergency {
		i := 1
		for i < len(q) && len(list) < p.cfg.MaxTxAggregation {
			f := q[i]

			if f.Emergency {
				break
			}
			if !f.Dst.Equal(head.Dst) || !f.Src.Equal(head.Src) {
				break
			}
			if !p.twt.Awake() {
				break
			}

			sz := fmac.TxBufHeadroom + f.NWB.DataSize()
			if totalLen+sz > p.cfg.AvailAMPDULenPerToken {
				break
			}

			totalLen += sz
			list = append(list, f)
			i++
		}
	}

	p.pendingQ[peerID][col] = q[len(list):]
	p.syncPendBitmap(peerID, ac)

	return list
}
