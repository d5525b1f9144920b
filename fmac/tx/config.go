// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package tx implements the TX data path of spec §4.5, the most intricate
// subsystem of the driver: per-peer per-AC pending queues, a reserved+spare
// descriptor allocator, A-MPDU aggregation, TWT-aware gating, coalesced
// command construction and TX-done processing. Its descriptor/ring
// bookkeeping is grounded in the teacher's soc/nxp/enet buffer descriptor
// ring (soc/nxp/enet/dma.go); its reserved/spare bitmap split and dense
// spare-slot map are grounded in the design note of spec §9.
package tx

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/nrfconnect/nrf700x-fmac/bits"
	"github.com/nrfconnect/nrf700x-fmac/fmac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/peer"
	"github.com/nrfconnect/nrf700x-fmac/fmac/umac"
	"github.com/nrfconnect/nrf700x-fmac/fmac/util"
)

// Frame is a single queued network buffer with its classification (spec §3
// "Frame units" / §4.5.4 start_xmit step 3).
type Frame struct {
	NWB       *util.NWB
	Dst, Src  util.MAC
	EthType   uint16
	TID       int
	Emergency bool // NRF_WIFI_AC_TWT_PRIORITY_EMERGENCY class
}

// bufInfo mirrors tx_buf_info: the mapping state of one in-flight buffer
// slot (spec §3).
type bufInfo struct {
	addr   uint32
	mapped bool
}

// descInfo mirrors pkt_info_p/send_pkt_coalesce_count_p: the coalesced
// frame list and owning peer for one descriptor (spec §3).
type descInfo struct {
	frames []*Frame
	peerID int
	ac     fmac.AC
}

// TWTGate stands in for the TWT sleep/wake gate (spec §4.5 "Gate egress on
// TWT sleep state"), backed by golang.org/x/time/rate: asleep collapses the
// limiter to zero tokens, awake restores it to an unbounded rate. Emergency
// frames bypass the limiter entirely, per spec §4.5.3.
type TWTGate struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	awake   bool
}

// NewTWTGate creates a gate starting in the awake state.
func NewTWTGate() *TWTGate {
	return &TWTGate{limiter: rate.NewLimiter(rate.Inf, 1), awake: true}
}

// SetAwake transitions the TWT sleep/wake state.
func (g *TWTGate) SetAwake(awake bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.awake = awake
	if awake {
		g.limiter.SetLimit(rate.Inf)
		g.limiter.SetBurst(1)
	} else {
		g.limiter.SetLimit(0)
		g.limiter.SetBurst(0)
	}
}

// Awake reports the current TWT state.
func (g *TWTGate) Awake() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.awake
}

// CanXmit implements spec §4.5.4's `can_xmit`: emergency frames are always
// permitted, everything else must be admitted by the limiter.
func (g *TWTGate) CanXmit(emergency bool) bool {
	if emergency {
		return true
	}
	return g.limiter.Allow()
}

// Config carries the named knobs of spec §6 relevant to the TX path.
type Config struct {
	NumTxTokensPerAC      int
	NumSpareDescs         int
	MaxTxAggregation      int
	AvailAMPDULenPerToken int
	MaxTxPendingQLen      int
}

// DefaultConfig returns the spec §6 default knobs.
func DefaultConfig() Config {
	return Config{
		NumTxTokensPerAC:      fmac.NumTxTokensPerAC,
		NumSpareDescs:         fmac.TxDescBucketBound,
		MaxTxAggregation:      fmac.MaxTxAggregation,
		AvailAMPDULenPerToken: fmac.AvailAMPDULenPerToken,
		MaxTxPendingQLen:      fmac.MaxTxPendingQLen,
	}
}

// Path is the device-owned tx_config of spec §3: per-(peer,AC) pending
// queues, the descriptor allocator, outstanding counts, coalesced packet
// info, the peer round-robin cursors and the AP wakeup client queue, all
// guarded by a single lock (tx_lock).
type Path struct {
	cfg       Config
	transport *umac.Transport
	peers     *peer.Table
	twt       *TWTGate

	mu sync.Mutex // tx_lock

	reservedCount int
	numTxTokens   int

	pendingQ [fmac.MaxSWPeers][fmac.ACMax + 1][]*Frame // +1 slot for MC

	descBitmap     []uint32
	spareDescQueue map[int]uint32 // spare slot -> 5-bit AC mask (bit 4 is MC)
	outstanding    [fmac.ACMax + 1]int // +1 slot for MC, indexed via acIndex

	descs       []descInfo
	bufs        []bufInfo // sized numTxTokens * MaxTxAggregation
	currPeerOpp [fmac.ACMax]int

	wakeupClientQ []int

	totalTxDonePkts uint64
}

// New creates a TX path bound to transport, peers and a TWT gate.
func New(cfg Config, transport *umac.Transport, peers *peer.Table, twt *TWTGate) *Path {
	reserved := cfg.NumTxTokensPerAC * fmac.ACMax
	total := reserved + cfg.NumSpareDescs

	p := &Path{
		cfg:            cfg,
		transport:      transport,
		peers:          peers,
		twt:            twt,
		reservedCount:  reserved,
		numTxTokens:    total,
		descBitmap:     make([]uint32, (total+31)/32),
		spareDescQueue: make(map[int]uint32),
		descs:          make([]descInfo, total),
		bufs:           make([]bufInfo, total*cfg.MaxTxAggregation),
	}

	for i := range p.descs {
		p.descs[i].peerID = -1
	}

	return p
}

// acIndex maps fmac.AC to the pendingQ column index (MC is the last
// column).
func acIndex(ac fmac.AC) int {
	if ac == fmac.ACMC {
		return fmac.ACMax
	}
	return int(ac)
}

func (p *Path) bitGet(idx int) bool {
	return bits.Get(p.descBitmap[idx/32], idx%32)
}

func (p *Path) bitSet(idx int) {
	p.descBitmap[idx/32] = bits.Set(p.descBitmap[idx/32], idx%32)
}

func (p *Path) bitClear(idx int) {
	p.descBitmap[idx/32] = bits.Clear(p.descBitmap[idx/32], idx%32)
}

// TotalTxDonePkts returns the aggregate count of frames freed on TX-done,
// for statistics (spec §8 scenario 1).
func (p *Path) TotalTxDonePkts() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalTxDonePkts
}

// OutstandingDescs returns outstanding_descs[ac], for the invariants of
// spec §8.
func (p *Path) OutstandingDescs(ac fmac.AC) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding[acIndex(ac)]
}
