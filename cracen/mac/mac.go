// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mac is cracen's MAC contract (spec §2/§4, PSA signature depth):
// AES-CMAC and HMAC. Grounded on soc/nxp/caam/cmac.go's SumAES shape
// (key in, message in, fixed 16-byte sum out), with the CAAM job
// submission replaced by a direct RFC 4493 implementation over
// crypto/aes (CMAC has no standard-library implementation) and
// crypto/hmac for HMAC.
package mac

import (
	"crypto/aes"
	"crypto/hmac"
	"crypto/sha256"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// shiftLeftXorRb doubles b in GF(2^128) per RFC 4493 §2.3.
func shiftLeftXorRb(b [16]byte) [16]byte {
	var out [16]byte
	carry := byte(0)
	for i := 15; i >= 0; i-- {
		out[i] = b[i]<<1 | carry
		carry = b[i] >> 7
	}
	if b[0]&0x80 != 0 {
		out[15] ^= 0x87
	}
	return out
}

func subkeys(block interface{ Encrypt(dst, src []byte) }) (k1, k2 [16]byte) {
	var zero [16]byte
	var l [16]byte
	block.Encrypt(l[:], zero[:])
	k1 = shiftLeftXorRb(l)
	k2 = shiftLeftXorRb(k1)
	return
}

// SumAES returns the AES-CMAC (RFC 4493) of msg under key (16, 24 or 32
// bytes).
func SumAES(key, msg []byte) ([16]byte, error) {
	var sum [16]byte

	block, err := aes.NewCipher(key)
	if err != nil {
		return sum, cracen.Err(cracen.StatusInvalidArgument)
	}

	k1, k2 := subkeys(block)

	n := (len(msg) + 15) / 16
	complete := len(msg) > 0 && len(msg)%16 == 0

	if n == 0 {
		n = 1
		complete = false
	}

	var last [16]byte
	lastStart := (n - 1) * 16

	if complete {
		copy(last[:], msg[lastStart:])
		for i := range last {
			last[i] ^= k1[i]
		}
	} else {
		tail := msg[lastStart:]
		copy(last[:], tail)
		last[len(tail)] = 0x80
		for i := range last {
			last[i] ^= k2[i]
		}
	}

	var x [16]byte
	for i := 0; i < n-1; i++ {
		var y [16]byte
		for j := 0; j < 16; j++ {
			y[j] = x[j] ^ msg[i*16+j]
		}
		block.Encrypt(x[:], y[:])
	}

	var y [16]byte
	for j := 0; j < 16; j++ {
		y[j] = x[j] ^ last[j]
	}
	block.Encrypt(sum[:], y[:])

	return sum, nil
}

// SumHMACSHA256 returns HMAC-SHA256(key, msg).
func SumHMACSHA256(key, msg []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(msg)
	return m.Sum(nil)
}
