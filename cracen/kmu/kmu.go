// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package kmu is cracen's Key Management Unit contract (spec §2/§4, PSA
// signature depth): an in-memory provisioned-key slot table with
// push-to-register semantics. There is no KMU hardware in this domain
// (spec §1 treats the bus HAL as opaque, and the KMU sits behind the
// cryptographic accelerator, not the radio bus), so the slot table is
// bookkeeping only; slot labels are rendered with
// github.com/btcsuite/btcutil/base58 for diagnostics, the same encoding
// the teacher's go.mod already carries for the pack's Bitcoin-adjacent
// dependency set.
package kmu

import (
	"sync"

	"github.com/btcsuite/btcutil/base58"

	"github.com/nrfconnect/nrf700x-fmac/cracen"
)

// Slot is one provisioned key.
type Slot struct {
	ID       int
	Key      []byte
	Purpose  string
}

// Label renders a human-readable identifier for slot diagnostics: plain
// Base58 (no checksum) of the low byte of the slot id followed by the raw
// key bytes.
func (s Slot) Label() string {
	buf := append([]byte{byte(s.ID)}, s.Key...)
	return base58.Encode(buf)
}

// Table is an in-memory KMU slot table.
type Table struct {
	mu    sync.Mutex
	slots map[int]Slot
}

// New creates an empty slot table.
func New() *Table {
	return &Table{slots: make(map[int]Slot)}
}

// Push provisions a key into slot id (ALREADY_EXISTS if occupied).
func (t *Table) Push(id int, key []byte, purpose string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.slots[id]; ok {
		return cracen.Err(cracen.StatusAlreadyExists)
	}

	t.slots[id] = Slot{ID: id, Key: append([]byte(nil), key...), Purpose: purpose}
	return nil
}

// Get retrieves the key provisioned at id (DOES_NOT_EXIST otherwise).
func (t *Table) Get(id int) (Slot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[id]
	if !ok {
		return Slot{}, cracen.Err(cracen.StatusDoesNotExist)
	}
	return s, nil
}

// Revoke removes the key provisioned at id (DOES_NOT_EXIST otherwise).
func (t *Table) Revoke(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.slots[id]; !ok {
		return cracen.Err(cracen.StatusDoesNotExist)
	}
	delete(t.slots, id)
	return nil
}
