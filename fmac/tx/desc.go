// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package tx

import "github.com/nrfconnect/nrf700x-fmac/fmac"

// descGet implements spec §4.5.2's tx_desc_get: first scan the AC's
// reserved stripe (desc = ac + AC_MAX*k, k in [0, NumTxTokensPerAC)), then
// fall back to the shared spare region. AC_MC has no reserved stripe of its
// own (the reserved region is sized for the four real ACs only), so MC
// traffic always draws from the spare region. Returns (-1, ErrNoFreeSlot)
// when both are exhausted.
func (p *Path) descGet(ac fmac.AC) (int, error) {
	if ac != fmac.ACMC {
		for k := 0; k < p.cfg.NumTxTokensPerAC; k++ {
			idx := int(ac) + fmac.ACMax*k
			if !p.bitGet(idx) {
				p.bitSet(idx)
				p.outstanding[acIndex(ac)]++
				p.descs[idx].ac = ac
				return idx, nil
			}
		}
	}

	for idx := p.reservedCount; idx < p.numTxTokens; idx++ {
		if !p.bitGet(idx) {
			p.bitSet(idx)
			p.outstanding[acIndex(ac)]++
			p.descs[idx].ac = ac

			slot := idx % p.reservedCount
			p.spareDescQueue[slot] |= 1 << uint(ac)

			return idx, nil
		}
	}

	return -1, fmac.ErrNoFreeSlot
}

// descFree implements spec §4.5.2's tx_desc_free. Freeing a descriptor
// whose bit is already clear is a no-op (spec §4.5.2 edge case).
func (p *Path) descFree(desc int, ac fmac.AC) {
	if !p.bitGet(desc) {
		return
	}

	p.bitClear(desc)
	p.outstanding[acIndex(ac)]--

	if desc >= p.reservedCount {
		slot := desc % p.reservedCount
		p.spareDescQueue[slot] &^= 1 << uint(ac)
	}
}
