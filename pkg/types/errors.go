package types

import "fmt"

// OrderError represents an error that occurred during order placement.
type OrderError struct {
	Code     string // API error code or internal error code
	Message  string // Human-readable error message
	IntentID string // Execution intent ID if available
}

func (e *OrderError) Error() string {
	if e.IntentID != "" {
		return fmt.Sprintf("order failed (intent: %s): %s (%s)", e.IntentID, e.Message, e.Code)
	}

	return fmt.Sprintf("order failed: %s (%s)", e.Message, e.Code)
}

// Known Polymarket CLOB API error codes
const (
	ErrInvalidMinTickSize = "INVALID_ORDER_MIN_TICK_SIZE"
	ErrNotEnoughBalance   = "INVALID_ORDER_NOT_ENOUGH_BALANCE"
	ErrFOKNotFilled       = "FOK_ORDER_NOT_FILLED_ERROR"
	ErrMarketNotReady     = "MARKET_NOT_READY"
	ErrUnmatched          = "UNMATCHED"
	ErrUnknownStatus      = "UNKNOWN_STATUS"
)
