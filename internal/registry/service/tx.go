package service

import (
	"context"
	"sync"
	"time"

	dErrors "nameledger/pkg/domain-errors"
)

// RegistryTx provides a transactional boundary for registry mutations.
// Implementations may wrap a database transaction or, in-memory, a coarse
// lock over both stores. Every write operation runs inside RunInTx so that
// two concurrent creates of one name resolve to exactly one success and a
// purchase racing a transfer leaves exactly one consistent owner.
type RegistryTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// defaultTxTimeout is the maximum duration for a registry transaction.
const defaultTxTimeout = 5 * time.Second

// memoryTx serializes mutations behind a single mutex. Registry writes touch
// both stores plus the fee balance, so one coarse lock is the whole boundary.
type memoryTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

// NewMemoryTx returns the transaction boundary for in-memory stores.
func NewMemoryTx() RegistryTx {
	return &memoryTx{}
}

func (t *memoryTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	// Check if context is already cancelled
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	// Apply timeout if not already set
	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}
