// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package hash

import (
	"bytes"
	"testing"
)

func TestSumMatchesMultipart(t *testing.T) {
	for _, alg := range []Algorithm{SHA1, SHA256, SHA384, SHA512} {
		oneShot, err := Sum(alg, []byte("hello world"))
		if err != nil {
			t.Fatalf("Sum: %v", err)
		}
		if len(oneShot) != alg.Size() {
			t.Fatalf("len(Sum) = %d, want %d", len(oneShot), alg.Size())
		}

		op, err := Setup(alg)
		if err != nil {
			t.Fatalf("Setup: %v", err)
		}
		op.Update([]byte("hello "))
		op.Update([]byte("world"))
		multi, err := op.Finish()
		if err != nil {
			t.Fatalf("Finish: %v", err)
		}

		if !bytes.Equal(oneShot, multi) {
			t.Fatalf("alg %d: one-shot %x != multipart %x", alg, oneShot, multi)
		}
	}
}

func TestUpdateAfterFinishIsBadState(t *testing.T) {
	op, _ := Setup(SHA256)
	op.Update([]byte("x"))
	if _, err := op.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := op.Update([]byte("y")); err == nil {
		t.Fatalf("Update after Finish: expected error, got nil")
	}
}
