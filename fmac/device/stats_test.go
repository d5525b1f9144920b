// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package device

import (
	"encoding/binary"
	"testing"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
)

func TestDecodeStats(t *testing.T) {
	body := make([]byte, 8+4+8+4+4*fmac.ACMax)
	binary.LittleEndian.PutUint64(body[0:8], 1234)
	binary.LittleEndian.PutUint32(body[8:12], 5)
	binary.LittleEndian.PutUint64(body[12:20], 5678)
	binary.LittleEndian.PutUint32(body[20:24], 2)
	for i := 0; i < fmac.ACMax; i++ {
		binary.LittleEndian.PutUint32(body[24+4*i:28+4*i], uint32(i+1))
	}

	s := decodeStats(body)
	if s.TxDonePkts != 1234 || s.TxFailures != 5 || s.RxPkts != 5678 || s.RxDrops != 2 {
		t.Fatalf("decodeStats = %+v, unexpected", s)
	}
	for i := 0; i < fmac.ACMax; i++ {
		if s.OutstandingTxDescs[i] != uint32(i+1) {
			t.Fatalf("OutstandingTxDescs[%d] = %d, want %d", i, s.OutstandingTxDescs[i], i+1)
		}
	}
}

func TestDecodeStatsShortBodyIsZeroValue(t *testing.T) {
	s := decodeStats([]byte{1, 2, 3})
	if s != (Stats{}) {
		t.Fatalf("decodeStats(short) = %+v, want zero value", s)
	}
}

func TestGetOrCreateIntIsIdempotent(t *testing.T) {
	a := getOrCreateInt("fmac_device_test_counter")
	b := getOrCreateInt("fmac_device_test_counter")
	if a != b {
		t.Fatalf("getOrCreateInt returned distinct vars for the same name")
	}
}
