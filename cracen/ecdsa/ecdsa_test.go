// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ecdsa

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{0x09}, 32)
	priv, err := GenerateKey(seed)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	hash := sha256.Sum256([]byte("message to sign"))
	sig, err := Sign(priv, hash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := Verify(priv.PublicKey(), hash[:], sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("Verify: signature did not validate")
	}
}

func TestVerifyFailsOnTamperedHash(t *testing.T) {
	seed := bytes.Repeat([]byte{0x0a}, 32)
	priv, err := GenerateKey(seed)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	hash := sha256.Sum256([]byte("original message"))
	sig, err := Sign(priv, hash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	otherHash := sha256.Sum256([]byte("different message"))
	ok, err := Verify(priv.PublicKey(), otherHash[:], sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("Verify: signature validated against tampered hash")
	}
}

func TestGenerateKeyRejectsWrongSeedLength(t *testing.T) {
	if _, err := GenerateKey(make([]byte, 16)); err == nil {
		t.Fatalf("GenerateKey(16-byte seed): expected error, got nil")
	}
}
