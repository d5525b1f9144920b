// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package kdf

import (
	"bytes"
	"testing"
)

func TestDeriveIsDeterministicAndRequestedLength(t *testing.T) {
	secret := []byte("shared-secret")
	salt := []byte("salt")
	info := []byte("context")

	a, err := Derive(secret, salt, info, 42)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if len(a) != 42 {
		t.Fatalf("len(Derive) = %d, want 42", len(a))
	}

	b, err := Derive(secret, salt, info, 42)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("Derive not deterministic for identical inputs")
	}
}

func TestDeriveDiffersAcrossInfo(t *testing.T) {
	secret := []byte("shared-secret")
	salt := []byte("salt")

	a, err := Derive(secret, salt, []byte("context-a"), 32)
	if err != nil {
		t.Fatalf("Derive a: %v", err)
	}
	b, err := Derive(secret, salt, []byte("context-b"), 32)
	if err != nil {
		t.Fatalf("Derive b: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("Derive produced identical output for distinct info")
	}
}

func TestDeriveRejectsNonPositiveLength(t *testing.T) {
	if _, err := Derive([]byte("s"), nil, nil, 0); err == nil {
		t.Fatalf("Derive(outLen=0): expected error, got nil")
	}
}
