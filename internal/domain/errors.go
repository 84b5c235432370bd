package domain

import "errors"

var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrInvalidDate   = errors.New("invalid date, use YYYY-MM-DD")
	ErrInvalidQuote  = errors.New("invalid quote payload")
)
