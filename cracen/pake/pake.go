// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pake is cracen's password-authenticated key exchange contract
// (spec §2/§4): SPAKE2+, SRP-6a and J-PAKE method signatures. Per spec §1,
// these are "specified only to the depth needed... the remaining...
// treated as uniform cracen-wrapped operations whose contracts are their
// PSA-style signatures" — genuinely out of this spec's elaboration depth,
// so the arithmetic bodies return NOT_SUPPORTED. The method signatures
// still exercise the real group type (github.com/btcsuite/btcd/btcec/v2's
// secp256k1 curve) rather than an opaque byte-slice placeholder, so a
// caller wiring a real implementation in later has the correct shape to
// fill in.
package pake

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// Group is the elliptic-curve group PAKE exchanges run over.
type Group = *btcec.KoblitzCurve

// DefaultGroup is secp256k1, the one curve this module's dependency set
// provides.
func DefaultGroup() Group { return btcec.S256() }

// Spake2PlusRole is a SPAKE2+ participant's role.
type Spake2PlusRole int

const (
	Spake2PlusProver Spake2PlusRole = iota
	Spake2PlusVerifier
)

// Spake2PlusSetup would configure a SPAKE2+ exchange over group for the
// given role and shared password verifier; the key-derivation and
// transcript arithmetic are out of this spec's elaboration depth.
func Spake2PlusSetup(group Group, role Spake2PlusRole, passwordVerifier []byte) error {
	return cracen.Err(cracen.StatusNotSupported)
}

// SRP6aSetup would configure an SRP-6a exchange over group for the given
// username/verifier pair.
func SRP6aSetup(group Group, username, verifier []byte) error {
	return cracen.Err(cracen.StatusNotSupported)
}

// JPAKERound is a J-PAKE protocol round identifier.
type JPAKERound int

const (
	JPAKERound1 JPAKERound = iota
	JPAKERound2
	JPAKERoundFinish
)

// JPAKEStep would process one J-PAKE round over group.
func JPAKEStep(group Group, round JPAKERound, in []byte) ([]byte, error) {
	return nil, cracen.Err(cracen.StatusNotSupported)
}
