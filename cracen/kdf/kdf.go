// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package kdf is cracen's key-derivation contract (spec §2/§4, PSA
// signature depth): HKDF-SHA256 via golang.org/x/crypto/hkdf, the uniform
// KDF the spec groups with the other cracen-wrapped operations whose
// contract is their PSA-style signature rather than further elaboration.
package kdf

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// Derive expands (secret, salt, info) into outLen bytes of key material via
// HKDF-SHA256.
func Derive(secret, salt, info []byte, outLen int) ([]byte, error) {
	if outLen <= 0 {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}

	r := hkdf.New(sha256.New, secret, salt, info)
	out := make([]byte, outLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, cracen.Err(cracen.StatusHardwareFailure)
	}

	return out, nil
}
