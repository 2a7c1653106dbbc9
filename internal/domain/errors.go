package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrZeroAmount indicates an operation for a zero amount.
	ErrZeroAmount = errors.New("zero amount")
	// ErrInvalidAmount indicates a negative or fractional amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidAccount indicates an account identity that cannot hold a balance.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrCapacityExceeded indicates that a deposit would push the vault over its capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrLimitExceeded indicates a withdrawal above the per-withdrawal limit.
	ErrLimitExceeded = errors.New("withdrawal limit exceeded")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrReentrancyDetected indicates a call made while another vault operation is in flight.
	ErrReentrancyDetected = errors.New("reentrancy detected")
	// ErrTransferFailed indicates that the payout of a withdrawal did not go through.
	ErrTransferFailed = errors.New("transfer failed")
	// ErrInvalidConfiguration indicates vault limits that are not positive.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// CapacityExceededError reports the total a rejected deposit would have produced.
type CapacityExceededError struct {
	WouldBeTotal decimal.Decimal
	Capacity     decimal.Decimal
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%v: total %s exceeds capacity %s", ErrCapacityExceeded, e.WouldBeTotal, e.Capacity)
}

// Is makes errors.Is(err, ErrCapacityExceeded) hold.
func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// LimitExceededError reports a withdrawal amount above the limit.
type LimitExceededError struct {
	Amount decimal.Decimal
	Limit  decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%v: amount %s exceeds limit %s", ErrLimitExceeded, e.Amount, e.Limit)
}

// Is makes errors.Is(err, ErrLimitExceeded) hold.
func (e *LimitExceededError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// InsufficientBalanceError reports a withdrawal amount above the account balance.
type InsufficientBalanceError struct {
	Amount    decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%v: amount %s, available %s", ErrInsufficientBalance, e.Amount, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientBalance) hold.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// TransferFailedError wraps the reason a payout failed.
type TransferFailedError struct {
	Destination string
	Amount      decimal.Decimal
	Err         error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("%v: %s to %s: %v", ErrTransferFailed, e.Amount, e.Destination, e.Err)
}

// Is makes errors.Is(err, ErrTransferFailed) hold.
func (e *TransferFailedError) Is(target error) bool {
	return target == ErrTransferFailed
}

// Unwrap returns the payout error.
func (e *TransferFailedError) Unwrap() error {
	return e.Err
}

// InvalidConfigurationError names the vault limit that failed validation.
type InvalidConfigurationError struct {
	Field string
	Value decimal.Decimal
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s must be positive, got %s", ErrInvalidConfiguration, e.Field, e.Value)
}

// Is makes errors.Is(err, ErrInvalidConfiguration) hold.
func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
