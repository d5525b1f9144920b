// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package aead

import "github.com/nrfconnect/nrf700x-fmac/cracen"

// Encrypt implements the one-shot aead_encrypt contract (setup →
// set_lengths → set_nonce → update_ad → update → finish) over a complete
// plaintext, writing the ciphertext prefix into dst (which must be at
// least len(pt) bytes; BUFFER_TOO_SMALL otherwise) and returning the full
// ciphertext and detached tag.
func Encrypt(alg Algorithm, key, nonce, ad, pt, dst []byte) (ct, tag []byte, err error) {
	if len(dst) < len(pt) {
		return nil, nil, cracen.Err(cracen.StatusBufferTooSmall)
	}

	op, err := Setup(DirEncrypt, key, alg)
	if err != nil {
		return nil, nil, err
	}
	if err := op.SetLengths(len(ad), len(pt)); err != nil {
		return nil, nil, err
	}
	if err := op.SetNonce(nonce); err != nil {
		return nil, nil, err
	}
	if len(ad) > 0 {
		if err := op.UpdateAD(ad); err != nil {
			return nil, nil, err
		}
	}

	out, err := op.Update(pt)
	if err != nil {
		return nil, nil, err
	}
	copy(dst, out)

	rest, tag, err := op.Finish()
	if err != nil {
		return nil, nil, err
	}

	ct = append(append([]byte(nil), dst[:len(out)]...), rest...)
	return ct, tag, nil
}

// Decrypt implements the one-shot aead_decrypt contract (setup →
// set_lengths → set_nonce → update_ad → update → verify), returning
// INVALID_SIGNATURE if tag does not match.
func Decrypt(alg Algorithm, key, nonce, ad, ct, tag, dst []byte) (pt []byte, err error) {
	if len(dst) < len(ct) {
		return nil, cracen.Err(cracen.StatusBufferTooSmall)
	}

	op, err := Setup(DirDecrypt, key, alg)
	if err != nil {
		return nil, err
	}
	if err := op.SetLengths(len(ad), len(ct)); err != nil {
		return nil, err
	}
	if err := op.SetNonce(nonce); err != nil {
		return nil, err
	}
	if len(ad) > 0 {
		if err := op.UpdateAD(ad); err != nil {
			return nil, err
		}
	}

	out, err := op.Update(ct)
	if err != nil {
		return nil, err
	}
	copy(dst, out)

	rest, err := op.Verify(tag)
	if err != nil {
		return nil, err
	}

	pt = append(append([]byte(nil), dst[:len(out)]...), rest...)
	return pt, nil
}
