// https://github.com/nrfconnect/nrf700x-fmac
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package umac

import (
	"sync"
	"time"

	"github.com/nrfconnect/nrf700x-fmac/fmac"
)

// Notifier is a one-shot completion signal, replacing the polled booleans
// of the original implementation per spec §9's design note ("replace with a
// one-shot notifier... no busy-wait polling is mandated").
type Notifier struct {
	mu   sync.Mutex
	ch   chan struct{}
	fired bool
}

// NewNotifier creates an armed (unfired) notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{})}
}

// Signal fires the notifier; subsequent Signal calls before Reset are no-ops.
func (n *Notifier) Signal() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.fired {
		n.fired = true
		close(n.ch)
	}
}

// Reset re-arms the notifier for another wait cycle.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.fired = false
	n.ch = make(chan struct{})
}

// Fired reports whether the notifier has already been signaled.
func (n *Notifier) Fired() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fired
}

// Wait blocks until the notifier fires or timeout elapses, returning
// fmac.ErrTimeout on expiry.
func (n *Notifier) Wait(timeout time.Duration) error {
	n.mu.Lock()
	ch := n.ch
	n.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-time.After(timeout):
		return fmac.ErrTimeout
	}
}
