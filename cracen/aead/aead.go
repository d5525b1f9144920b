// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package aead implements the multipart AEAD state machine of cracen's
// crypto core (spec §4.7): setup/set_nonce/set_lengths/update_ad/update/
// finish/verify around one of three backing algorithms. CCM's CBC-MAC/CTR
// bookkeeping has no standard-library or pack-library replacement and is
// implemented directly in ccm.go; GCM is crypto/cipher's AES-GCM
// construction (the idiomatic Go choice industry-wide) and
// ChaCha20-Poly1305 is golang.org/x/crypto/chacha20poly1305. Both of those
// expose only a one-shot Seal/Open, so the multipart bookkeeping for them —
// nonce and AD/payload ordering, staging, bad-state checks — runs the same
// as CCM's, while the actual cipher math executes once at finish/verify
// against the buffered input.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// Algorithm selects the backing AEAD construction.
type Algorithm int

const (
	CCM Algorithm = iota
	GCM
	ChaCha20Poly1305
)

func (a Algorithm) blockSize() int {
	if a == ChaCha20Poly1305 {
		return 64
	}
	return 16
}

func (a Algorithm) defaultTagSize() int { return 16 }

// Direction is the operation's encrypt/decrypt mode.
type Direction int

const (
	DirEncrypt Direction = iota
	DirDecrypt
)

type opState int

const (
	stateInitialized opState = iota
	stateHWReserved
	stateClosed
)

// Operation is one multipart AEAD context (spec: algorithm, direction,
// tag/block size, nonce, AD/payload lengths, staging buffer, ad_finished,
// and a sub-state gating operation ordering).
type Operation struct {
	mu sync.Mutex

	alg       Algorithm
	dir       Direction
	key       []byte
	tagSize   int
	blockSize int
	state     opState

	nonce []byte

	lengthsSet bool
	adLen      int
	ptLen      int
	adSeen     int
	adFinished bool

	// buf/adBuf accumulate input for GCM/ChaCha20-Poly1305, whose only Go
	// implementations are one-shot; unused by CCM, which streams via ccm.
	buf, adBuf []byte

	ccm *ccmState
	eng *engine
}

// Setup implements setup: records key, algorithm, direction and the
// per-algorithm default tag/block size.
func Setup(dir Direction, key []byte, alg Algorithm) (*Operation, error) {
	if len(key) == 0 {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}

	return &Operation{
		alg:       alg,
		dir:       dir,
		key:       append([]byte(nil), key...),
		tagSize:   alg.defaultTagSize(),
		blockSize: alg.blockSize(),
		state:     stateInitialized,
		eng:       &engine{},
	}, nil
}

// GetTagSize and GetBlockSize report the algorithm's per-operation sizes.
func (op *Operation) GetTagSize() int   { return op.tagSize }
func (op *Operation) GetBlockSize() int { return op.blockSize }

// SetLengths implements set_lengths, required for CCM before SetNonce (it
// needs the plaintext length to build the RFC 3610 header block).
func (op *Operation) SetLengths(adLen, ptLen int) error {
	op.mu.Lock()
	defer op.mu.Unlock()

	if op.state != stateInitialized {
		return op.fail(cracen.StatusBadState)
	}
	if adLen < 0 || ptLen < 0 {
		return op.fail(cracen.StatusInvalidArgument)
	}

	op.adLen, op.ptLen = adLen, ptLen
	op.lengthsSet = true

	return nil
}

// SetNonce implements set_nonce. For CCM this additionally builds the
// RFC 3610 header block (and, if AD length > 0, the encoded AD-length
// field) and feeds both into the CBC-MAC.
func (op *Operation) SetNonce(nonce []byte) error {
	op.mu.Lock()
	defer op.mu.Unlock()

	if op.state != stateInitialized {
		return op.fail(cracen.StatusBadState)
	}

	switch op.alg {
	case GCM, ChaCha20Poly1305:
		if len(nonce) != 12 {
			return op.fail(cracen.StatusInvalidArgument)
		}
	case CCM:
		if len(nonce) < 7 || len(nonce) > 13 {
			return op.fail(cracen.StatusInvalidArgument)
		}
		if !op.lengthsSet {
			return op.fail(cracen.StatusBadState)
		}
	}

	op.nonce = append([]byte(nil), nonce...)

	if op.alg == CCM {
		if err := op.eng.reserveHardware(op.key); err != nil {
			return op.fail(cracen.StatusHardwareFailure)
		}

		var ccm *ccmState
		var ccmErr error
		op.eng.awaitHardware(func(block cipher.Block) {
			ccm, ccmErr = newCCMState(block, op.nonce, op.tagSize, op.adLen, op.ptLen)
		})
		if ccmErr != nil {
			return op.fail(cracen.StatusInvalidArgument)
		}
		op.ccm = ccm
	}

	op.state = stateHWReserved

	return nil
}

// UpdateAD implements update_ad: rejected once payload input has begun
// (ad_finished), per the contract that AD must precede payload.
func (op *Operation) UpdateAD(data []byte) error {
	op.mu.Lock()
	defer op.mu.Unlock()

	if op.state != stateHWReserved {
		return op.fail(cracen.StatusBadState)
	}
	if op.adFinished {
		return op.fail(cracen.StatusBadState)
	}

	op.adSeen += len(data)
	if op.lengthsSet && op.adSeen > op.adLen {
		return op.fail(cracen.StatusInvalidArgument)
	}

	if op.alg == CCM {
		op.ccm.feedMAC(data)
	} else {
		op.adBuf = append(op.adBuf, data...)
	}

	return nil
}

// finishAD performs the terminal AD-flush the first time payload input
// arrives (or finish/verify is reached with no payload at all).
func (op *Operation) finishAD() {
	op.adFinished = true
	if op.alg == CCM {
		op.ccm.flushMAC()
	}
}

// Update implements update: for CCM, streams ciphertext/plaintext
// immediately (CTR has no block-alignment dependency); for GCM and
// ChaCha20-Poly1305 it accumulates input, since those only expose a
// one-shot Seal/Open.
func (op *Operation) Update(in []byte) ([]byte, error) {
	op.mu.Lock()
	defer op.mu.Unlock()

	if op.state != stateHWReserved {
		return nil, op.fail(cracen.StatusBadState)
	}
	if !op.adFinished {
		op.finishAD()
	}

	if op.alg == CCM {
		return op.ccm.process(op.dir, in), nil
	}

	op.buf = append(op.buf, in...)
	return nil, nil
}

// Finish implements finish (encrypt direction): flushes any buffered
// bytes, produces the tag, and zeroizes the context.
func (op *Operation) Finish() (ct, tag []byte, err error) {
	op.mu.Lock()
	defer op.mu.Unlock()

	if op.dir != DirEncrypt {
		return nil, nil, op.fail(cracen.StatusBadState)
	}
	if op.state != stateHWReserved {
		return nil, nil, op.fail(cracen.StatusBadState)
	}
	if !op.adFinished {
		op.finishAD()
	}

	if op.alg == CCM {
		t := op.ccm.tag()
		op.zeroize()
		return nil, t, nil
	}

	aeadImpl, berr := op.backendAEAD()
	if berr != nil {
		return nil, nil, op.fail(cracen.StatusHardwareFailure)
	}

	sealed := aeadImpl.Seal(nil, op.nonce, op.buf, op.adBuf)
	overhead := aeadImpl.Overhead()
	ct = sealed[:len(sealed)-overhead]
	tag = sealed[len(sealed)-overhead:]

	op.zeroize()
	return ct, tag, nil
}

// Verify implements verify (decrypt direction): flushes any buffered
// bytes and checks the supplied tag, returning INVALID_SIGNATURE on
// mismatch.
func (op *Operation) Verify(tag []byte) (pt []byte, err error) {
	op.mu.Lock()
	defer op.mu.Unlock()

	if op.dir != DirDecrypt {
		return nil, op.fail(cracen.StatusBadState)
	}
	if op.state != stateHWReserved {
		return nil, op.fail(cracen.StatusBadState)
	}
	if !op.adFinished {
		op.finishAD()
	}

	if op.alg == CCM {
		computed := op.ccm.tag()
		ok := subtle.ConstantTimeCompare(computed, tag) == 1
		op.zeroize()
		if !ok {
			return nil, cracen.Err(cracen.StatusInvalidSignature)
		}
		return nil, nil
	}

	aeadImpl, berr := op.backendAEAD()
	if berr != nil {
		return nil, op.fail(cracen.StatusHardwareFailure)
	}

	sealed := append(append([]byte(nil), op.buf...), tag...)
	opened, oerr := aeadImpl.Open(nil, op.nonce, sealed, op.adBuf)
	op.zeroize()
	if oerr != nil {
		return nil, cracen.Err(cracen.StatusInvalidSignature)
	}

	return opened, nil
}

func (op *Operation) backendAEAD() (cipher.AEAD, error) {
	switch op.alg {
	case GCM:
		block, err := aes.NewCipher(op.key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case ChaCha20Poly1305:
		return chacha20poly1305.New(op.key)
	default:
		return nil, cracen.Err(cracen.StatusNotSupported)
	}
}

// zeroize clears key material and staged input, per the contract that any
// crypto error (or a successful terminal call) leaves the context unusable
// without re-Setup.
func (op *Operation) zeroize() {
	for i := range op.key {
		op.key[i] = 0
	}
	for i := range op.nonce {
		op.nonce[i] = 0
	}
	op.buf = nil
	op.adBuf = nil
	op.ccm = nil
	op.state = stateClosed
}

func (op *Operation) fail(status cracen.Status) error {
	op.zeroize()
	return cracen.Err(status)
}
