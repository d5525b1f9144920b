// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cipher is cracen's block-cipher contract (spec §2/§4, PSA
// signature depth): one-shot ECB/CBC/CTR over AES, grounded on
// soc/nxp/caam/cipher.go's mode-dispatch shape with the CAAM job submission
// replaced by crypto/aes and crypto/cipher — the standard library already
// provides CBC and CTR block-mode wrapping; ECB (not in crypto/cipher,
// deliberately, since it is not semantically secure for multi-block
// messages) is implemented here as a direct block-by-block loop, matching
// the original's symmetric-cipher surface rather than improving on it.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// Mode selects the block-cipher chaining mode.
type Mode int

const (
	ECB Mode = iota
	CBC
	CTR
)

type ecbEncrypter struct{ b cipher.Block }
type ecbDecrypter struct{ b cipher.Block }

func (e *ecbEncrypter) BlockSize() int { return e.b.BlockSize() }
func (e *ecbEncrypter) CryptBlocks(dst, src []byte) {
	bs := e.b.BlockSize()
	for len(src) > 0 {
		e.b.Encrypt(dst[:bs], src[:bs])
		src, dst = src[bs:], dst[bs:]
	}
}

func (d *ecbDecrypter) BlockSize() int { return d.b.BlockSize() }
func (d *ecbDecrypter) CryptBlocks(dst, src []byte) {
	bs := d.b.BlockSize()
	for len(src) > 0 {
		d.b.Decrypt(dst[:bs], src[:bs])
		src, dst = src[bs:], dst[bs:]
	}
}

// Encrypt encrypts pt under key/mode, returning a newly allocated buffer.
// ECB and CBC require pt to be a multiple of the AES block size and an iv
// of exactly one block for CBC/CTR; CTR accepts any length.
func Encrypt(mode Mode, key, iv, pt []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}

	switch mode {
	case ECB:
		if len(pt)%aes.BlockSize != 0 {
			return nil, cracen.Err(cracen.StatusInvalidArgument)
		}
		ct := make([]byte, len(pt))
		(&ecbEncrypter{block}).CryptBlocks(ct, pt)
		return ct, nil
	case CBC:
		if len(pt)%aes.BlockSize != 0 || len(iv) != aes.BlockSize {
			return nil, cracen.Err(cracen.StatusInvalidArgument)
		}
		ct := make([]byte, len(pt))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, pt)
		return ct, nil
	case CTR:
		if len(iv) != aes.BlockSize {
			return nil, cracen.Err(cracen.StatusInvalidArgument)
		}
		ct := make([]byte, len(pt))
		cipher.NewCTR(block, iv).XORKeyStream(ct, pt)
		return ct, nil
	default:
		return nil, cracen.Err(cracen.StatusNotSupported)
	}
}

// Decrypt decrypts ct under key/mode/iv, the inverse of Encrypt.
func Decrypt(mode Mode, key, iv, ct []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, cracen.Err(cracen.StatusInvalidArgument)
	}

	switch mode {
	case ECB:
		if len(ct)%aes.BlockSize != 0 {
			return nil, cracen.Err(cracen.StatusInvalidArgument)
		}
		pt := make([]byte, len(ct))
		(&ecbDecrypter{block}).CryptBlocks(pt, ct)
		return pt, nil
	case CBC:
		if len(ct)%aes.BlockSize != 0 || len(iv) != aes.BlockSize {
			return nil, cracen.Err(cracen.StatusInvalidArgument)
		}
		pt := make([]byte, len(ct))
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)
		return pt, nil
	case CTR:
		if len(iv) != aes.BlockSize {
			return nil, cracen.Err(cracen.StatusInvalidArgument)
		}
		pt := make([]byte, len(ct))
		cipher.NewCTR(block, iv).XORKeyStream(pt, ct)
		return pt, nil
	default:
		return nil, cracen.Err(cracen.StatusNotSupported)
	}
}
