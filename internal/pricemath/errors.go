package pricemath

import (
	"errors"
	"fmt"
)

var (
	ErrZeroDenominator     = errors.New("denominator amount is zero")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrSqrtRatioOverflow   = errors.New("sqrt ratio does not fit in uint160")
	ErrSqrtRatioOutOfRange = errors.New("sqrt ratio out of range")
	ErrTickOutOfRange      = errors.New("tick out of range")
	ErrInvalidTickSpacing  = errors.New("tick spacing must be positive")
	ErrEmptyTickRange      = errors.New("tick range is empty")
	ErrZeroLiquidity       = errors.New("liquidity is zero")
	ErrLiquidityOverflow   = errors.New("liquidity does not fit in uint128")
)

// DomainError reports which operation rejected which input.
type DomainError struct {
	Op    string
	Value string
	Err   error
}

func (e *DomainError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s(%s): %v", e.Op, e.Value, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func domainErr(op, value string, err error) error {
	return &DomainError{Op: op, Value: value, Err: err}
}
