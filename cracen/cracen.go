// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cracen is the shared error-kind surface for the cryptographic
// driver subpackages (aead, hash, cipher, mac, pake, ecdsa, rsa, drbg, kmu,
// kdf): one Status enum and an Error type wrapping it, replacing the
// original's integer return-code convention with an idiomatic Go error.
package cracen

import "fmt"

// Status is one of the cryptographic driver's error kinds.
type Status int

const (
	StatusInvalidArgument Status = iota
	StatusBufferTooSmall
	StatusNotSupported
	StatusInvalidSignature
	StatusBadState
	StatusTimeout
	StatusHardwareFailure
	StatusAlreadyExists
	StatusDoesNotExist
	StatusInsufficientMemory
)

func (s Status) String() string {
	switch s {
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusBufferTooSmall:
		return "buffer too small"
	case StatusNotSupported:
		return "not supported"
	case StatusInvalidSignature:
		return "invalid signature"
	case StatusBadState:
		return "bad state"
	case StatusTimeout:
		return "timeout"
	case StatusHardwareFailure:
		return "hardware failure"
	case StatusAlreadyExists:
		return "already exists"
	case StatusDoesNotExist:
		return "does not exist"
	case StatusInsufficientMemory:
		return "insufficient memory"
	default:
		return "unknown status"
	}
}

// Error is the concrete error type every cracen subpackage returns.
type Error struct {
	Status Status
}

func (e *Error) Error() string { return fmt.Sprintf("cracen: %s", e.Status) }

// Is lets errors.Is match on Status alone, so callers can write
// errors.Is(err, cracen.Err(cracen.StatusInvalidSignature)) without caring
// which subpackage produced it.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Status == te.Status
}

// Err constructs the Error for status, the one way every subpackage signals
// a cracen-kind failure.
func Err(status Status) error {
	return &Error{Status: status}
}
