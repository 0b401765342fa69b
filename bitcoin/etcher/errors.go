// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etcher

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrSignerUnavailable defines that the external signer could not produce
// a commit key.
var ErrSignerUnavailable = errors.New("signer unavailable")

// ErrPendingFunding defines that the commit address has no confirmed
// funding yet. Not a failure, the caller is expected to poll again.
var ErrPendingFunding = errors.New("pending funding")

// ErrBroadcastRejected defines that the data provider refused the signed
// reveal transaction. The signed transaction is retained for re-broadcast.
var ErrBroadcastRejected = errors.New("broadcast rejected")

// ErrInsufficientFunds defines that the funding output cannot cover the
// fees and the dust threshold.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidState defines that the requested transition is not allowed
// from the current orchestration state.
var ErrInvalidState = errors.New("operation is not allowed in current state")

// InsufficientFundsError carries the fee split that the funding output
// failed to cover.
type InsufficientFundsError struct {
	FundingValue  *big.Int
	MinerFee      *big.Int
	ServiceFee    *big.Int
	DustThreshold *big.Int
}

// Error implements the error interface.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: funding %s does not cover miner fee %s, service fee %s and dust threshold %s",
		e.FundingValue, e.MinerFee, e.ServiceFee, e.DustThreshold)
}

// Unwrap makes the error match ErrInsufficientFunds.
func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
