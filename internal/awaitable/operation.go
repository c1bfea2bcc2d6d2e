package awaitable

import (
	"context"
	"sync/atomic"
)

const (
	idle uint32 = iota
	pending
	completed
)

// sentinel occupies the continuation slot once the operation completed before anyone
// registered interest in it.
var sentinel = new(func())

// Operation is a single-use suspension point over one socket call. The result is a
// transferred byte count for receive and send, and the accepted connection for accept.
//
// Exactly one continuation is invoked per completed operation. Registering a continuation
// and completing the operation are racing writers of the same slot, the first one to swap it
// wins: a completion finding the slot empty leaves the sentinel for the late registrant to
// find and run the continuation by itself.
//
// An operation is owned by a single goroutine: only the owner may Begin, Await and Reset it.
// It may be reused once the previous continuation has run, which Await guarantees.
type Operation[T any] struct {
	name   string
	buff   []byte
	result T
	err    error
	done   chan struct{}
	state  atomic.Uint32
	cont   atomic.Pointer[func()]
}

// New returns an idle operation. The name is used in errors, the buffer is handed to every
// call issued via Begin.
func New[T any](name string, buff []byte) *Operation[T] {
	return &Operation[T]{
		name: name,
		buff: buff,
	}
}

// Buffer returns the buffer the operation was created with.
func (o *Operation[T]) Buffer() []byte {
	return o.buff
}

// Begin resets the operation and issues the call asynchronously. The call completes the
// operation upon return.
func (o *Operation[T]) Begin(call func(buff []byte) (T, error)) *Operation[T] {
	o.Reset()
	o.state.Store(pending)

	go func() {
		result, err := call(o.buff)
		o.Complete(result, err)
	}()

	return o
}

// Resolve resets the operation and completes it synchronously. This is the way to go when the
// result is known without touching the socket at all.
func (o *Operation[T]) Resolve(result T, err error) *Operation[T] {
	o.Reset()
	o.state.Store(pending)
	o.Complete(result, err)

	return o
}

// Complete stores the outcome and fires the continuation, if one was registered already.
func (o *Operation[T]) Complete(result T, err error) {
	if o.state.Load() != pending {
		panic("BUG: completing an operation that is not in flight")
	}

	o.result, o.err = result, err
	o.state.Store(completed)

	prev := o.cont.Load()
	if prev == nil {
		if o.cont.CompareAndSwap(nil, sentinel) {
			return
		}

		prev = o.cont.Load()
	}

	(*prev)()
}

// OnCompleted registers the continuation. If the operation is already completed, the
// continuation is invoked immediately on the caller's goroutine.
func (o *Operation[T]) OnCompleted(cont func()) {
	if o.cont.CompareAndSwap(nil, &cont) {
		return
	}

	if o.cont.Load() == sentinel {
		cont()
		return
	}

	panic("BUG: continuation registered twice")
}

// IsCompleted reports whether the outcome of the operation is known.
func (o *Operation[T]) IsCompleted() bool {
	return o.state.Load() == completed
}

// Result returns the outcome of a completed operation. Failures are wrapped into
// *SocketError.
func (o *Operation[T]) Result() (T, error) {
	if o.err != nil {
		return o.result, &SocketError{Op: o.name, Err: o.err}
	}

	return o.result, nil
}

// Await suspends the caller until the operation completes. If the context is done first, its
// error is returned and the operation stays in flight: the owner must close the socket to make
// it complete, and Await it again before reusing.
func (o *Operation[T]) Await(ctx context.Context) (T, error) {
	if o.state.Load() == idle {
		panic("BUG: awaiting an operation that was never begun")
	}

	if o.done == nil {
		done := make(chan struct{})
		o.done = done
		o.OnCompleted(func() {
			close(done)
		})
	}

	select {
	case <-o.done:
		return o.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Reset clears the state of the operation, so it can be reused.
func (o *Operation[T]) Reset() {
	if o.state.Load() == pending {
		panic("BUG: resetting an operation that is still in flight")
	}

	var zero T
	o.result, o.err, o.done = zero, nil, nil
	o.cont.Store(nil)
	o.state.Store(idle)
}
