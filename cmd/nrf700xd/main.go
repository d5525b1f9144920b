// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command nrf700xd brings up one fmac/device.Device over a loopback bus and
// serves its live statistics on a debugcharts dashboard, grounded on the
// teacher's cmd/tamago bring-up sequence (construct, Init, run, Deinit on
// signal) and example/web_server.go's "start the dashboard alongside the
// driver" wiring.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/device"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
	"github.com/nrfconnect/nrf700x-fmac/hal/loopback"
)

func main() {
	addr := flag.String("stats-addr", "127.0.0.1:6969", "debugcharts dashboard listen address")
	apMode := flag.Bool("ap", false, "bring the device up as an AP VIF instead of STA")
	flag.Parse()

	logger := log.New(os.Stderr, "nrf700xd: ", log.LstdFlags)

	cfg := device.DefaultConfig()
	cfg.APMode = *apMode

	bus := loopback.New(1<<20, rpuResponder)
	defer bus.Close()

	dev, err := device.New(bus, logger, cfg)
	if err != nil {
		logger.Fatalf("device.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), fmac.InitWaitSec*time.Second)
	if err := dev.Init(ctx, nil); err != nil {
		cancel()
		logger.Fatalf("Init: %v", err)
	}
	cancel()

	vifType := fmac.VIFTypeSTA
	if *apMode {
		vifType = fmac.VIFTypeAP
	}
	if _, err := dev.VIFs().AddVIF(0, vifType, util.MAC{0x02, 0, 0, 0, 0, 1}, fmac.NopCallbacks{}); err != nil {
		logger.Fatalf("AddVIF: %v", err)
	}

	stats, err := dev.Serve(*addr, 2*time.Second)
	if err != nil {
		logger.Fatalf("Serve: %v", err)
	}
	logger.Printf("dashboard listening on http://%s/debug/charts/", *addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Printf("shutting down")
	stats.Stop()
	if err := dev.Deinit(); err != nil {
		logger.Printf("Deinit: %v", err)
	}
}

// rpuResponder stands in for a real RPU: it answers CMD_INIT/CMD_DEINIT
// immediately and returns zeroed counters for CMD_GET_STATION, enough to
// drive the dashboard without real radio hardware attached.
func rpuResponder(cmd []byte) [][]byte {
	h, err := umac.DecodeHeader(cmd)
	if err != nil || h.Class != umac.ClassSystem {
		return nil
	}

	switch umac.Cmd(h.ID) {
	case umac.CmdInit:
		return [][]byte{umac.Alloc(umac.ClassSystem, uint16(umac.EvInitDone), 0, nil)}
	case umac.CmdDeinit:
		return [][]byte{umac.Alloc(umac.ClassSystem, uint16(umac.EvDeinitDone), 0, nil)}
	case umac.CmdGetStation:
		body := make([]byte, 8+4+8+4+4*fmac.ACMax)
		return [][]byte{umac.Alloc(umac.ClassSystem, uint16(umac.EvStats), 0, body)}
	}
	return nil
}
