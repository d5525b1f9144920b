// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package drbg is cracen's deterministic random bit generator contract
// (spec §2/§4, PSA signature depth): a CTR-DRBG over AES-256, reseed-
// counter tracked. Grounded on soc/nxp/caam/rng.go's mutex-guarded
// GetRandomData (lock around the shared generator state, fill the
// caller's buffer incrementally), with the CAAM TRNG replaced by AES-CTR
// keystream generation seeded from the caller's entropy input.
package drbg

import (
	"crypto/aes"
	"crypto/cipher"
	"sync"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// maxRequestsBeforeReseed bounds how many Generate calls a single seed may
// serve before the reseed counter forces the caller to call Reseed (NIST
// SP 800-90A recommends a generous but finite bound; this is a
// conservative software-only value, not a hardware limit).
const maxRequestsBeforeReseed = 1 << 16

// DRBG is one instantiated CTR-DRBG context.
type DRBG struct {
	mu sync.Mutex

	block cipher.Block
	v     [aes.BlockSize]byte

	reseedCounter uint64
}

func update(block cipher.Block, key *[]byte, v *[aes.BlockSize]byte, providedData []byte) {
	var out [32 + aes.BlockSize]byte
	for off := 0; off < len(out); off += aes.BlockSize {
		incrementCounter(v)
		var block16 [aes.BlockSize]byte
		block.Encrypt(block16[:], v[:])
		copy(out[off:], block16[:])
	}

	if len(providedData) > 0 {
		n := len(providedData)
		if n > len(out) {
			n = len(out)
		}
		for i := 0; i < n; i++ {
			out[i] ^= providedData[i]
		}
	}

	*key = append([]byte(nil), out[:32]...)
	copy(v[:], out[32:32+aes.BlockSize])
}

func incrementCounter(v *[aes.BlockSize]byte) {
	for i := len(v) - 1; i >= 0; i-- {
		v[i]++
		if v[i] != 0 {
			return
		}
	}
}

// Instantiate seeds a new DRBG from entropy (must be at least 32 bytes of
// real entropy; personalization is optional additional input).
func Instantiate(entropy, personalization []byte) (*DRBG, error) {
	if len(entropy) < 32 {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}

	seedMaterial := append(append([]byte(nil), entropy...), personalization...)

	var key [32]byte
	keySlice := key[:]
	var v [aes.BlockSize]byte

	block, err := aes.NewCipher(keySlice)
	if err != nil {
		return nil, cracen.Err(cracen.StatusHardwareFailure)
	}
	update(block, &keySlice, &v, seedMaterial)

	block, err = aes.NewCipher(keySlice)
	if err != nil {
		return nil, cracen.Err(cracen.StatusHardwareFailure)
	}

	return &DRBG{block: block, v: v, reseedCounter: 1}, nil
}

// Reseed folds fresh entropy into the generator state and resets the
// reseed counter.
func (d *DRBG) Reseed(entropy []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(entropy) < 32 {
		return cracen.Err(cracen.StatusInvalidArgument)
	}

	var key [32]byte
	keySlice := key[:]
	update(d.block, &keySlice, &d.v, entropy)

	block, err := aes.NewCipher(keySlice)
	if err != nil {
		return cracen.Err(cracen.StatusHardwareFailure)
	}

	d.block = block
	d.reseedCounter = 1

	return nil
}

// Generate fills out with pseudo-random bytes, returning a BAD_STATE error
// if the reseed interval has been exceeded (mirrors the
// real accelerator's requirement that the caller reseed periodically).
func (d *DRBG) Generate(out []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.reseedCounter > maxRequestsBeforeReseed {
		return cracen.Err(cracen.StatusBadState)
	}

	produced := 0
	for produced < len(out) {
		incrementCounter(&d.v)
		var block16 [aes.BlockSize]byte
		d.block.Encrypt(block16[:], d.v[:])
		n := copy(out[produced:], block16[:])
		produced += n
	}

	var key [32]byte
	keySlice := key[:]
	update(d.block, &keySlice, &d.v, nil)
	block, err := aes.NewCipher(keySlice)
	if err != nil {
		return cracen.Err(cracen.StatusHardwareFailure)
	}
	d.block = block

	d.reseedCounter++

	return nil
}
