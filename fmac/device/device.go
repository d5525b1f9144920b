// https://github.com/nrfconnect/nrf700x-fmac/fmac/device
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package device composes the peer table, VIF table, TX path and RX path
// into the device context of spec §4.1-§4.5: dev_add/dev_init/dev_deinit
// lifecycle, RF parameter negotiation gated on INIT_DONE, and aggregated
// statistics collection. Grounded on the teacher's top-level driver struct
// pattern (soc/nxp/enet.ENET composing a DMA ring, a PHY and MAC registers
// behind one Init/Start/Stop lifecycle).
package device

import (
	"context"
	"log"
	"time"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/peer"
	"github.com/nrfconnect/nrf700x-fmac/fmac/rx"
	"github.com/nrfconnect/nrf700x-fmac/fmac/tx"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
	"github.com/nrfconnect/nrf700x-fmac/fmac/vif"
	"github.com/nrfconnect/nrf700x-fmac/hal"
)

// Config carries the constructor-time knobs for a Device.
type Config struct {
	TX      tx.Config
	RX      rx.Config
	// APMode, when true, creates the AP peer bitmap that every AP-mode peer
	// slot (including the broadcast pseudo-peer) is mirrored into; STA-only
	// devices leave it false.
	APMode bool
}

// DefaultConfig returns the spec §6 defaults for every subsystem.
func DefaultConfig() Config {
	return Config{TX: tx.DefaultConfig(), RX: rx.DefaultConfig()}
}

// apBitmap is the in-memory stand-in for the RPU memory region that mirrors
// per-peer AP pending-queue bitmaps (peer.APBitmap); spec §1 treats the bus
// HAL as opaque, so there is no real shared-memory region to mirror into
// and this is purely bookkeeping for tests/introspection.
type apBitmap struct {
	slots map[int]util.MAC
}

func newAPBitmap() *apBitmap { return &apBitmap{slots: make(map[int]util.MAC)} }

func (a *apBitmap) SetSlot(slot int, addr util.MAC) { a.slots[slot] = addr }
func (a *apBitmap) ClearSlot(slot int)              { delete(a.slots, slot) }

// Device is the top-level driver context (spec §3 "device context").
type Device struct {
	cfg       Config
	transport *umac.Transport
	peers     *peer.Table
	vifs      *vif.Table
	tx        *tx.Path
	rx        *rx.Path
	twt       *tx.TWTGate
	log       *log.Logger

	initDone   *umac.Notifier
	deinitDone *umac.Notifier
	statsDone  *umac.Notifier
	lastStats  Stats

	stats *StatsServer
}

// New implements spec §4.1's dev_add: constructs every subsystem but does
// not yet talk to the RPU (that happens in Init).
func New(bus hal.Bus, logger *log.Logger, cfg Config) (*Device, error) {
	if logger == nil {
		logger = log.Default()
	}

	transport := umac.New(bus, logger)

	var ap peer.APBitmap
	if cfg.APMode {
		ap = newAPBitmap()
	}
	peers := peer.New(ap)
	vifs := vif.New(transport, peers)
	twt := tx.NewTWTGate()
	txPath := tx.New(cfg.TX, transport, peers, twt)

	rxPath, err := rx.New(cfg.RX, transport, peers, vifs, logger)
	if err != nil {
		return nil, err
	}

	d := &Device{
		cfg:        cfg,
		transport:  transport,
		peers:      peers,
		vifs:       vifs,
		tx:         txPath,
		rx:         rxPath,
		twt:        twt,
		log:        logger,
		initDone:   umac.NewNotifier(),
		deinitDone: umac.NewNotifier(),
		statsDone:  umac.NewNotifier(),
	}

	transport.OnUMAC(d.onUMACEvent)
	transport.OnSystem(d.onSystemEvent)
	transport.OnData(d.onDataEvent)

	return d, nil
}

// VIFs/Peers/TX/RX expose the underlying subsystems for composition above
// this layer (test harnesses, cmd/ wiring).
func (d *Device) VIFs() *vif.Table   { return d.vifs }
func (d *Device) Peers() *peer.Table { return d.peers }
func (d *Device) TX() *tx.Path       { return d.tx }
func (d *Device) RX() *rx.Path       { return d.rx }
func (d *Device) TWT() *tx.TWTGate   { return d.twt }

// Transmit implements spec §4.5.4's start_xmit receiver-address resolution
// ahead of classification: a station VIF sends everything to its BSSID;
// every other VIF type addresses the frame's own destination. eth must be a
// full Ethernet frame (destination, source, ethertype, payload); payload is
// freed on any rejection path so callers never leak it.
func (d *Device) Transmit(vifIdx int, payload *util.NWB) fmac.TxResult {
	v := d.vifs.Get(vifIdx)
	if v == nil {
		payload.Free()
		return fmac.TxFailed
	}

	eth := payload.Data()
	if len(eth) < util.EthernetHeaderLen {
		payload.Free()
		return fmac.TxFailed
	}

	var dst, src util.MAC
	copy(src[:], eth[6:12])

	if v.Type == fmac.VIFTypeSTA {
		dst = v.BSSID
	} else {
		copy(dst[:], eth[0:6])
	}

	ethType, err := util.TxGetEthType(eth)
	if err != nil {
		payload.Free()
		return fmac.TxFailed
	}

	tid := util.GetTID(eth)

	return d.tx.StartXmit(vifIdx, dst, src, ethType, tid, payload)
}

// Init implements spec §4.1's dev_init: send CMD_INIT carrying RF
// parameters, then block up to InitWaitSec for EVENT_INIT_DONE.
func (d *Device) Init(ctx context.Context, rfParams []byte) error {
	d.initDone.Reset()
	d.transport.ResetInitState()

	if err := d.transport.SendSystem(uint16(umac.CmdInit), rfParams); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- d.initDone.Wait(fmac.InitWaitSec * time.Second) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deinit implements spec §4.1's dev_deinit: send CMD_DEINIT, block up to
// InitWaitSec for EVENT_DEINIT_DONE, then release the RX buffer pools and
// stop the RX worker.
func (d *Device) Deinit() error {
	d.deinitDone.Reset()

	if err := d.transport.SendSystem(uint16(umac.CmdDeinit), nil); err != nil {
		return err
	}

	err := d.deinitDone.Wait(fmac.InitWaitSec * time.Second)

	d.rx.Close()
	if d.stats != nil {
		d.stats.Stop()
	}

	return err
}

// onUMACEvent dispatches the control-plane UMAC events this layer owns
// (spec §4.2's EVENT_IFFLAGS_STATUS); everything else is out of this
// package's scope and is logged for visibility.
func (d *Device) onUMACEvent(h umac.Header, body []byte) {
	switch umac.UMACEvent(h.ID) {
	case umac.EvIfflagsStatus:
		if len(body) < 5 {
			return
		}
		vifIdx := int(body[0])
		status := int32(body[1]) | int32(body[2])<<8 | int32(body[3])<<16 | int32(body[4])<<24
		d.vifs.OnIfflagsStatus(vifIdx, status)
	default:
		d.log.Printf("device: unhandled UMAC event %d", h.ID)
	}
}

// onSystemEvent handles the SYSTEM class events relevant at this layer:
// INIT_DONE/DEINIT_DONE release the matching Notifier (the transport has
// already flipped its own booleans), STATS completes a pending stats_get.
func (d *Device) onSystemEvent(h umac.Header, body []byte) {
	switch umac.SystemEvent(h.ID) {
	case umac.EvInitDone:
		d.initDone.Signal()
	case umac.EvDeinitDone:
		d.deinitDone.Signal()
	case umac.EvStats:
		d.lastStats = decodeStats(body)
		d.statsDone.Signal()
	}
}

// onDataEvent routes ClassData envelopes this layer owns (carrier state,
// TX-done, power-save) to the TX path and the owning VIF; RX's own handler
// is registered independently by rx.New against the same multi-registrant
// OnData slot.
func (d *Device) onDataEvent(h umac.Header, body []byte) {
	switch umac.DataEvent(h.ID) {
	case umac.EvTxBuffDone:
		if len(body) < 4 {
			return
		}
		vifIdx := int(body[1])
		d.tx.OnTxBuffDone(vifIdx, body)
	case umac.EvCarrierOn, umac.EvCarrierOff:
		if len(body) < 4 {
			return
		}
		vifIdx := int(body[0])
		v := d.vifs.Get(vifIdx)
		if v == nil {
			return
		}
		on := umac.DataEvent(h.ID) == umac.EvCarrierOn
		if on {
			v.CarrierState = fmac.CarrierOn
		} else {
			v.CarrierState = fmac.CarrierOff
		}
		v.OS.CarrierStateChanged(on)
	case umac.EvPMMode:
		if len(body) < 6 {
			return
		}
		vifIdx := int(body[0])
		peerID := int(body[1])
		psMode := body[2] != 0
		d.tx.OnPMMode(vifIdx, peerID, psMode)
	case umac.EvPSGetFrames:
		if len(body) < 3 {
			return
		}
		vifIdx := int(body[0])
		peerID := int(body[1])
		count := int(body[2])
		d.tx.OnPSGetFrames(vifIdx, peerID, count)
	}
}
