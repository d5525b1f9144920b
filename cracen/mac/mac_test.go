// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mac

import (
	"bytes"
	"testing"
)

// TestSumAESRFC4493Vectors checks the RFC 4493 §4 test vectors for
// AES-128-CMAC.
func TestSumAESRFC4493Vectors(t *testing.T) {
	key := []byte{
		0x2b, 0x7e, 0x15, 0x16, 0x28, 0xae, 0xd2, 0xa6,
		0xab, 0xf7, 0x15, 0x88, 0x09, 0xcf, 0x4f, 0x3c,
	}
	msg := []byte{
		0x6b, 0xc1, 0xbe, 0xe2, 0x2e, 0x40, 0x9f, 0x96,
		0xe9, 0x3d, 0x7e, 0x11, 0x73, 0x93, 0x17, 0x2a,
	}
	want := []byte{
		0x07, 0x0a, 0x16, 0xb4, 0x6b, 0x4d, 0x41, 0x44,
		0xf7, 0x9b, 0xdd, 0x9d, 0xd0, 0x4a, 0x28, 0x7c,
	}

	got, err := SumAES(key, msg)
	if err != nil {
		t.Fatalf("SumAES: %v", err)
	}
	if !bytes.Equal(got[:], want) {
		t.Fatalf("SumAES(16-byte msg) = %x, want %x", got, want)
	}
}

func TestSumAESEmptyMessageMatchesRFC4493(t *testing.T) {
	key := []byte{
		0x2b, 0x7e, 0x15, 0x16, 0x28, 0xae, 0xd2, 0xa6,
		0xab, 0xf7, 0x15, 0x88, 0x09, 0xcf, 0x4f, 0x3c,
	}
	want := []byte{
		0xbb, 0x1d, 0x69, 0x29, 0xe9, 0x59, 0x37, 0x28,
		0x7f, 0xa3, 0x7d, 0x12, 0x9b, 0x75, 0x67, 0x46,
	}

	got, err := SumAES(key, nil)
	if err != nil {
		t.Fatalf("SumAES: %v", err)
	}
	if !bytes.Equal(got[:], want) {
		t.Fatalf("SumAES(empty) = %x, want %x", got, want)
	}
}

func TestSumHMACSHA256IsDeterministic(t *testing.T) {
	key := []byte("key")
	msg := []byte("message")

	a := SumHMACSHA256(key, msg)
	b := SumHMACSHA256(key, msg)
	if !bytes.Equal(a, b) {
		t.Fatalf("SumHMACSHA256 not deterministic")
	}

	c := SumHMACSHA256(key, []byte("different"))
	if bytes.Equal(a, c) {
		t.Fatalf("SumHMACSHA256 collided across distinct messages")
	}
}
