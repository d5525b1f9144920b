// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ecdsa is cracen's ECDSA contract (spec §2/§4, PSA signature
// depth): sign/verify over secp256k1. Grounded on soc/nxp/caam/ecdsa.go's
// Sign(priv, hash) (r, s, err) shape, with the hardware protocol-data-block
// submission replaced by github.com/btcsuite/btcd/btcec/v2's software
// implementation of the same curve the teacher's PDB already names
// (ECDSEL_P256K1).
package ecdsa

import (
	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *btcec.PrivateKey
}

// GenerateKey derives a PrivateKey from 32 bytes of key material.
func GenerateKey(seed []byte) (*PrivateKey, error) {
	if len(seed) != 32 {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}
	return &PrivateKey{key: btcec.PrivKeyFromBytes(seed)}, nil
}

// PublicKey returns the compressed public key bytes.
func (p *PrivateKey) PublicKey() []byte {
	return p.key.PubKey().SerializeCompressed()
}

// Sign signs hash (already hashed by the caller) and returns a DER
// signature.
func Sign(priv *PrivateKey, hash []byte) ([]byte, error) {
	if len(hash) == 0 {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}
	sig := btcecdsa.Sign(priv.key, hash)
	return sig.Serialize(), nil
}

// Verify checks a DER signature against a compressed public key and hash.
func Verify(pubKey, hash, sig []byte) (bool, error) {
	pk, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false, cracen.Err(cracen.StatusInvalidArgument)
	}

	s, err := btcecdsa.ParseDERSignature(sig)
	if err != nil {
		return false, cracen.Err(cracen.StatusInvalidSignature)
	}

	return s.Verify(hash, pk), nil
}
