// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package aead

import (
	"crypto/cipher"
	"encoding/binary"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// ccmState is CCM's CBC-MAC/CTR bookkeeping (RFC 3610), hand-built on
// crypto/aes block encryption since CCM has no standard-library or
// reference-pack implementation — this is exactly the component the
// cryptographic core is specified to get right. macPending is the
// unprocessed-input staging buffer of less than one block: feedMAC drains
// every full block as soon as it arrives, so only a trailing partial block
// stays staged until whichever caller next flushes it — the AD→payload
// transition or finish/verify.
type ccmState struct {
	block cipher.Block
	tagSize int

	mac        [16]byte
	macPending []byte

	stream cipher.Stream // CTR over the payload, counter starting at A1
	s0     [16]byte      // E(K, A0), masks the tag
}

// newCCMState builds the RFC 3610 first header block B0 (flags byte
// encoding tag size and length-field size, the nonce, and the big-endian
// plaintext length), feeds it into the CBC-MAC, and — if adLen > 0 —
// follows it with the encoded AD-length field (2, 6, or 10 bytes depending
// on magnitude) per RFC 3610 §2.2. It also derives S0, the keystream block
// that will mask the finished tag.
func newCCMState(block cipher.Block, nonce []byte, tagSize, adLen, ptLen int) (*ccmState, error) {
	n := len(nonce)
	l := 15 - n
	if l < 2 || l > 8 {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}
	if l < 8 && ptLen >= (1<<(8*l)) {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}

	c := &ccmState{block: block, tagSize: tagSize}

	var b0 [16]byte
	flags := byte(0)
	if adLen > 0 {
		flags |= 0x40
	}
	flags |= byte(((tagSize - 2) / 2) << 3)
	flags |= byte(l - 1)
	b0[0] = flags
	copy(b0[1:1+n], nonce)
	putBE(b0[1+n:16], uint64(ptLen), l)
	c.feedMAC(b0[:])

	if adLen > 0 {
		c.feedMAC(encodeADLen(adLen))
	}

	var a0 [16]byte
	a0[0] = byte(l - 1)
	copy(a0[1:1+n], nonce)
	block.Encrypt(c.s0[:], a0[:])

	var a1 [16]byte
	a1[0] = byte(l - 1)
	copy(a1[1:1+n], nonce)
	putBE(a1[1+n:16], 1, l)
	c.stream = cipher.NewCTR(block, a1[:])

	return c, nil
}

func putBE(dst []byte, v uint64, l int) {
	for i := l - 1; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}

// encodeADLen implements RFC 3610 §2.2's three-tier associated-data length
// encoding.
func encodeADLen(adLen int) []byte {
	n := uint64(adLen)
	switch {
	case n < 0xFF00:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		return b
	case n <= 0xFFFFFFFF:
		b := make([]byte, 6)
		b[0], b[1] = 0xff, 0xfe
		binary.BigEndian.PutUint32(b[2:], uint32(n))
		return b
	default:
		b := make([]byte, 10)
		b[0], b[1] = 0xff, 0xff
		binary.BigEndian.PutUint64(b[2:], n)
		return b
	}
}

// feedMAC appends data to the staging buffer and CBC-MACs every full block
// it can, leaving at most 15 unconsumed bytes staged.
func (c *ccmState) feedMAC(data []byte) {
	c.macPending = append(c.macPending, data...)
	for len(c.macPending) >= 16 {
		var x [16]byte
		for i := 0; i < 16; i++ {
			x[i] = c.mac[i] ^ c.macPending[i]
		}
		c.block.Encrypt(c.mac[:], x[:])
		c.macPending = c.macPending[16:]
	}
}

// flushMAC zero-pads and processes any partial staged block; a no-op if
// the staging buffer is already empty (the common case when input happens
// to land exactly on block boundaries).
func (c *ccmState) flushMAC() {
	if len(c.macPending) == 0 {
		return
	}

	var x [16]byte
	copy(x[:], c.macPending)
	for i := range x {
		x[i] ^= c.mac[i]
	}
	c.block.Encrypt(c.mac[:], x[:])
	c.macPending = nil
}

// process runs one Update chunk through CBC-MAC and CTR in the order
// appropriate to dir: encrypt MACs plaintext before masking it, decrypt
// unmasks ciphertext before MACing the recovered plaintext.
func (c *ccmState) process(dir Direction, in []byte) []byte {
	out := make([]byte, len(in))

	if dir == DirEncrypt {
		c.feedMAC(in)
		c.stream.XORKeyStream(out, in)
	} else {
		c.stream.XORKeyStream(out, in)
		c.feedMAC(out)
	}

	return out
}

// tag flushes any remaining staged MAC input and masks the result with S0.
func (c *ccmState) tag() []byte {
	c.flushMAC()
	t := make([]byte, c.tagSize)
	for i := range t {
		t[i] = c.mac[i] ^ c.s0[i]
	}
	return t
}
