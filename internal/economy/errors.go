package economy

import "errors"

// Recoverable precondition failures. Callers skip the operation and carry on;
// none of these leave partial mutations behind.
var (
	ErrProductNotFound   = errors.New("product not found in market")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrMissingParty      = errors.New("transaction party missing")
)

// ErrCostOverflow means price × quantity is not representable, or crediting
// the seller would leave int64 range. The transaction is rejected before any
// money moves.
var ErrCostOverflow = errors.New("transaction cost exceeds representable money")
