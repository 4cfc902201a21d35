package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrInvalidFilter = errors.New("invalid order filter")
	ErrInvalidID     = errors.New("invalid order id")
)
