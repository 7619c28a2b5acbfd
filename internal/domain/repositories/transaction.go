package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager is the explicit unit of work for composing several
// store operations into one commit boundary. Single calls default to a
// store-managed scope; callers that need atomicity across calls run them
// inside ExecTx.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
