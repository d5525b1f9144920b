// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"sync"
)

// engine models the accelerator reservation split the original calls
// process_on_hw/initialize_ctx: reserveHardware lazily builds the block
// cipher handle the first time an operation needs it (mirroring
// soc/nxp/caam/job.go's once.Do job-ring init), and awaitHardware
// serializes access to it the way job.go's ring.Lock/Unlock serializes one
// job descriptor at a time. Each Operation owns its own engine, since
// unlike a shared job ring each operation has its own key.
type engine struct {
	once  sync.Once
	mu    sync.Mutex
	block cipher.Block
	err   error
}

// reserveHardware builds (once) the AES block cipher backing this
// operation's hardware.
func (e *engine) reserveHardware(key []byte) error {
	e.once.Do(func() {
		e.block, e.err = aes.NewCipher(key)
	})
	return e.err
}

// awaitHardware runs fn with exclusive access to the reserved block cipher.
func (e *engine) awaitHardware(fn func(cipher.Block)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.block)
}
