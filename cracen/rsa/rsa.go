// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package rsa is cracen's RSA contract (spec §2/§4, PSA signature depth):
// sign/verify/encrypt/decrypt. Grounded on the other cracen subpackages'
// "wrap the standard library" texture (hash, cipher) rather than any
// single teacher file — the teacher's CAAM driver has no RSA engine, and
// crypto/rsa is the idiomatic Go choice for a software-only RSA backend.
package rsa

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// GenerateKey creates an RSA key pair of the given bit size.
func GenerateKey(bits int) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, cracen.Err(cracen.StatusHardwareFailure)
	}
	return key, nil
}

// Sign produces a PKCS#1 v1.5 signature over the SHA-256 digest of data.
func Sign(priv *rsa.PrivateKey, data []byte) ([]byte, error) {
	h := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, h[:])
	if err != nil {
		return nil, cracen.Err(cracen.StatusHardwareFailure)
	}
	return sig, nil
}

// Verify checks a PKCS#1 v1.5 signature, returning INVALID_SIGNATURE on
// mismatch.
func Verify(pub *rsa.PublicKey, data, sig []byte) error {
	h := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], sig); err != nil {
		return cracen.Err(cracen.StatusInvalidSignature)
	}
	return nil
}

// Encrypt performs RSA-OAEP (SHA-256) encryption.
func Encrypt(pub *rsa.PublicKey, pt, label []byte) ([]byte, error) {
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, pt, label)
	if err != nil {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}
	return ct, nil
}

// Decrypt performs RSA-OAEP (SHA-256) decryption.
func Decrypt(priv *rsa.PrivateKey, ct, label []byte) ([]byte, error) {
	pt, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ct, label)
	if err != nil {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}
	return pt, nil
}
