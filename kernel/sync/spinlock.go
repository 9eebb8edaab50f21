// Package sync provides synchronization primitives that do not depend on
// the Go scheduler.
package sync

import "sync/atomic"

// attemptsBeforeYielding is the number of failed acquisition attempts after
// which Acquire invokes yieldFn (if set).
const attemptsBeforeYielding = 64

var (
	// yieldFn is invoked while spinning. There is no scheduler to yield to
	// so it is nil in the kernel.
	yieldFn func()
)

// SetYieldFunc registers fn to be invoked periodically while Acquire spins
// and returns the previously registered function. The kernel never sets it;
// hosted tests that contend a lock from several goroutines install
// runtime.Gosched.
func SetYieldFunc(fn func()) func() {
	prev := yieldFn
	yieldFn = fn
	return prev
}

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available. The zero value is an unlocked Spinlock.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// There is no timeout and no fairness guarantee. Any attempt to re-acquire a
// lock already held by the current task will cause a deadlock.
func (l *Spinlock) Acquire() {
	for attempts := uint32(1); !l.TryToAcquire(); attempts++ {
		// Wait for the holder to release the lock before retrying.
		for atomic.LoadUint32(&l.state) != 0 {
			if attempts%attemptsBeforeYielding == 0 && yieldFn != nil {
				yieldFn()
			}
			attempts++
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
