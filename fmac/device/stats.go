// https://github.com/nrfconnect/nrf700x-fmac/fmac/device
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package device

import (
	"context"
	"encoding/binary"
	"expvar"
	"net"
	"net/http"
	"time"

	_ "github.com/mkevac/debugcharts" // registers /debug/charts/* on http.DefaultServeMux

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
)

// Stats is the decoded form of one EVENT_STATS envelope (spec §4.1
// stats_get's aggregated counters).
type Stats struct {
	TxDonePkts  uint64
	TxFailures  uint32
	RxPkts      uint64
	RxDrops     uint32
	OutstandingTxDescs [fmac.ACMax]uint32
}

func decodeStats(body []byte) Stats {
	var s Stats
	if len(body) < 8+4+8+4+4*fmac.ACMax {
		return s
	}
	off := 0
	s.TxDonePkts = binary.LittleEndian.Uint64(body[off : off+8])
	off += 8
	s.TxFailures = binary.LittleEndian.Uint32(body[off : off+4])
	off += 4
	s.RxPkts = binary.LittleEndian.Uint64(body[off : off+8])
	off += 8
	s.RxDrops = binary.LittleEndian.Uint32(body[off : off+4])
	off += 4
	for i := 0; i < fmac.ACMax; i++ {
		s.OutstandingTxDescs[i] = binary.LittleEndian.Uint32(body[off : off+4])
		off += 4
	}
	return s
}

// StatsGet implements spec §4.1's stats_get: send CMD stats request (piggy-
// backed as a SYSTEM class command, since it is a device-wide query rather
// than a per-VIF one) and block up to FMACStatsRecvTimeoutSec for the
// RPU's response, merging in the TX path's own locally tracked counters
// (which do not require a round trip).
func (d *Device) StatsGet() (Stats, error) {
	d.statsDone.Reset()

	if err := d.transport.SendSystem(uint16(umac.CmdGetStation), nil); err != nil {
		return Stats{}, err
	}

	if err := d.statsDone.Wait(fmac.FMACStatsRecvTimeoutSec * time.Second); err != nil {
		return Stats{}, err
	}

	s := d.lastStats
	s.TxDonePkts = d.tx.TotalTxDonePkts()
	for ac := fmac.AC(0); ac < fmac.ACMax; ac++ {
		s.OutstandingTxDescs[ac] = uint32(d.tx.OutstandingDescs(ac))
	}

	return s, nil
}

// StatsServer wires github.com/mkevac/debugcharts as an optional HTTP
// dashboard over live driver statistics (spec §4.1 "stats surfaced for
// operational visibility"), the same way the teacher's example/web_server.go
// runs a debug HTTP server alongside a driver instance.
type StatsServer struct {
	dev    *Device
	srv    *http.Server
	txDone *expvar.Int
	rxPkts *expvar.Int
	stop   chan struct{}
}

// Serve starts an HTTP listener at addr exposing debugcharts's /debug/charts
// dashboard (registered on http.DefaultServeMux by its own package init)
// plus the raw counters as expvars, refreshed every interval. It returns
// once the listener is up; Stop shuts it down.
func (d *Device) Serve(addr string, interval time.Duration) (*StatsServer, error) {
	s := &StatsServer{
		dev:    d,
		srv:    &http.Server{Addr: addr, Handler: http.DefaultServeMux},
		txDone: getOrCreateInt("fmac_tx_done_pkts"),
		rxPkts: getOrCreateInt("fmac_rx_pkts"),
		stop:   make(chan struct{}),
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	go s.refresh(interval)
	go s.srv.Serve(ln)

	d.stats = s
	return s, nil
}

func (s *StatsServer) refresh(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			st, err := s.dev.StatsGet()
			if err != nil {
				continue
			}
			s.txDone.Set(int64(st.TxDonePkts))
			s.rxPkts.Set(int64(st.RxPkts))
		}
	}
}

// getOrCreateInt returns the process-wide expvar of name, creating it if
// this is the first Device to publish stats in this process.
func getOrCreateInt(name string) *expvar.Int {
	if v := expvar.Get(name); v != nil {
		if iv, ok := v.(*expvar.Int); ok {
			return iv
		}
	}
	return expvar.NewInt(name)
}

// Stop shuts down the stats HTTP server and its refresh loop.
func (s *StatsServer) Stop() {
	close(s.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.srv.Shutdown(ctx)
}
