// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package hash is cracen's multipart hashing contract (spec §2/§4, treated
// at PSA-signature depth): setup/update/finish over one of the standard
// digest algorithms. Grounded on soc/nxp/caam/hash.go's setup/update/
// finish-shaped digest API, with the CAAM job submission replaced by the
// standard library's own hash.Hash (no pack library improves on
// crypto/sha1, crypto/sha256 or crypto/sha512 for a plain digest).
package hash

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	stdhash "hash"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// Algorithm selects the digest.
type Algorithm int

const (
	SHA1 Algorithm = iota
	SHA256
	SHA384
	SHA512
)

// Size returns the digest size in bytes for alg.
func (a Algorithm) Size() int {
	switch a {
	case SHA1:
		return sha1.Size
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	default:
		return 0
	}
}

func (a Algorithm) newHash() (stdhash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, cracen.Err(cracen.StatusNotSupported)
	}
}

// Operation is a multipart hash context.
type Operation struct {
	alg  Algorithm
	h    stdhash.Hash
	done bool
}

// Setup starts a new multipart hash operation.
func Setup(alg Algorithm) (*Operation, error) {
	h, err := alg.newHash()
	if err != nil {
		return nil, err
	}
	return &Operation{alg: alg, h: h}, nil
}

// Update feeds more bytes into the digest.
func (op *Operation) Update(data []byte) error {
	if op.done {
		return cracen.Err(cracen.StatusBadState)
	}
	op.h.Write(data)
	return nil
}

// Finish returns the digest and closes the operation.
func (op *Operation) Finish() ([]byte, error) {
	if op.done {
		return nil, cracen.Err(cracen.StatusBadState)
	}
	op.done = true
	return op.h.Sum(nil), nil
}

// Sum is the one-shot digest of data under alg.
func Sum(alg Algorithm, data []byte) ([]byte, error) {
	op, err := Setup(alg)
	if err != nil {
		return nil, err
	}
	if err := op.Update(data); err != nil {
		return nil, err
	}
	return op.Finish()
}
