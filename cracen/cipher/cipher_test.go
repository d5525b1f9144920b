// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cipher

import (
	"bytes"
	"testing"
)

func TestRoundTripAllModes(t *testing.T) {
	key := bytes.Repeat([]byte{0xAB}, 16)
	iv := bytes.Repeat([]byte{0x01}, 16)

	for _, mode := range []Mode{ECB, CBC, CTR} {
		var pt []byte
		if mode == CTR {
			pt = []byte("not block aligned!!")
		} else {
			pt = bytes.Repeat([]byte{0x42}, 32)
		}

		ct, err := Encrypt(mode, key, iv, pt)
		if err != nil {
			t.Fatalf("mode %d Encrypt: %v", mode, err)
		}
		if len(ct) != len(pt) {
			t.Fatalf("mode %d: len(ct) = %d, want %d", mode, len(ct), len(pt))
		}

		got, err := Decrypt(mode, key, iv, ct)
		if err != nil {
			t.Fatalf("mode %d Decrypt: %v", mode, err)
		}
		if !bytes.Equal(got, pt) {
			t.Fatalf("mode %d: got %x, want %x", mode, got, pt)
		}
	}
}

func TestECBRejectsUnalignedInput(t *testing.T) {
	key := bytes.Repeat([]byte{0xAB}, 16)
	if _, err := Encrypt(ECB, key, nil, []byte("not 16 bytes")); err == nil {
		t.Fatalf("Encrypt(ECB, unaligned): expected error, got nil")
	}
}
