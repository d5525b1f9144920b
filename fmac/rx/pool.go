// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package rx

import (
	"encoding/binary"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
)

// slot is one buffer in a pool: the nwb backing it and its bus mapping.
type slot struct {
	nwb  *util.NWB
	addr uint32
}

// pool is one RX buffer pool (spec §4.4): a fixed array of same-size
// buffers, each mapped onto the bus so the RPU can DMA into it.
type pool struct {
	spec  PoolSpec
	slots []slot
}

// mapDescToPool implements spec §4.4's map_desc_to_pool: pools are laid out
// contiguously by descriptor id, pool 0 first.
func (p *Path) mapDescToPool(desc int) (poolID int, slotIdx int, ok bool) {
	base := 0
	for i, pl := range p.pools {
		if desc < base+len(pl.slots) {
			return i, desc - base, true
		}
		base += len(pl.slots)
	}
	return 0, 0, false
}

// initPools allocates and maps every buffer of every pool and sends one
// CMD_RX_BUFF_INIT per pool: the pool id byte, then an (addr, size) pair
// per buffer.
func (p *Path) initPools() error {
	for i, spec := range p.cfg.Pools {
		pl := &pool{spec: spec}

		body := make([]byte, 1+6*spec.NumBufs)
		body[0] = byte(i)

		for k := 0; k < spec.NumBufs; k++ {
			nwb := util.Alloc(spec.BufSize, fmac.RxBufHeadroom)

			addr, err := p.transport.Map(nwb.Data())
			if err != nil {
				return err
			}

			pl.slots = append(pl.slots, slot{nwb: nwb, addr: addr})

			off := 1 + k*6
			binary.LittleEndian.PutUint32(body[off:off+4], addr)
			binary.LittleEndian.PutUint16(body[off+4:off+6], uint16(spec.BufSize))
		}

		if err := p.transport.SendData(uint16(umac.CmdRxBuffInit), 0, body); err != nil {
			return err
		}

		p.pools = append(p.pools, pl)
	}

	return nil
}

// rearm replaces the buffer at (poolID, slotIdx) with a fresh one and tells
// the RPU about it, mirroring a single-descriptor RX_BUFF_INIT (spec §4.4
// "descriptors are re-armed immediately after delivery").
func (p *Path) rearm(poolID, slotIdx int) error {
	pl := p.pools[poolID]
	spec := pl.spec

	if err := p.transport.Unmap(pl.slots[slotIdx].addr); err != nil {
		return err
	}

	nwb := util.Alloc(spec.BufSize, fmac.RxBufHeadroom)
	addr, err := p.transport.Map(nwb.Data())
	if err != nil {
		return err
	}

	pl.slots[slotIdx] = slot{nwb: nwb, addr: addr}

	body := make([]byte, 7)
	body[0] = byte(poolID)
	binary.LittleEndian.PutUint32(body[1:5], addr)
	binary.LittleEndian.PutUint16(body[5:7], uint16(spec.BufSize))

	return p.transport.SendData(uint16(umac.CmdRxBuffInit), 0, body)
}

// deinitPools unmaps every buffer in every pool (spec §4.4 rx_buf_deinit).
func (p *Path) deinitPools() {
	for _, pl := range p.pools {
		for _, s := range pl.slots {
			p.transport.Unmap(s.addr)
		}
	}
	p.pools = nil

	p.transport.SendData(uint16(umac.CmdRxBuffDeinit), 0, nil)
}
