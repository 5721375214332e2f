package nearshare

import (
	"context"
	"sync"
	"sync/atomic"

	"nearshare/internal/domain"
)

// Operation is an in-flight send. It finishes exactly once.
type Operation struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	sent  atomic.Int64
	total atomic.Int64

	mu       sync.Mutex
	status   domain.TransferStatus
	err      error
	transfer domain.Transfer
}

func newOperation(id string, cancel context.CancelFunc) *Operation {
	return &Operation{id: id, cancel: cancel, done: make(chan struct{}), status: domain.TransferPending}
}

// finishedOperation returns an operation that already failed
func finishedOperation(t domain.Transfer, err error) *Operation {
	op := newOperation(t.ID, func() {})
	t.Status = domain.TransferFailed
	t.Error = err.Error()
	op.finish(t, err)
	return op
}

// ID is the transfer id shared with the receiving peer
func (o *Operation) ID() string { return o.id }

// Cancel asks the operation to stop. It is a no-op once finished.
func (o *Operation) Cancel() { o.cancel() }

// Done is closed when the operation has an outcome
func (o *Operation) Done() <-chan struct{} { return o.done }

// Wait blocks until the operation finishes and returns its outcome
func (o *Operation) Wait() (domain.TransferStatus, error) {
	<-o.done
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status, o.err
}

// Progress reports bytes sent so far and the expected total
func (o *Operation) Progress() (sent, total int64) {
	return o.sent.Load(), o.total.Load()
}

// Transfer returns the finished transfer record; zero until Done
func (o *Operation) Transfer() domain.Transfer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transfer
}

func (o *Operation) finish(t domain.Transfer, err error) {
	o.mu.Lock()
	o.status = t.Status
	o.err = err
	o.transfer = t
	o.mu.Unlock()
	close(o.done)
}
