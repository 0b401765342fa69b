// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etcher

import (
	"math/big"

	"runeetch/bitcoin"
)

// State defines commit-reveal orchestration states.
type State string

const (
	// StateIdle defines that no commit destination was requested yet.
	StateIdle State = "idle"
	// StateAwaitingPayment defines that the commit address waits for funding.
	StateAwaitingPayment State = "awaiting payment"
	// StateFundingObserved defines that a confirmed funding output was selected.
	StateFundingObserved State = "funding observed"
	// StateRevealing defines that the reveal transaction is being built.
	StateRevealing State = "revealing"
	// StateSucceeded defines that the reveal transaction was broadcast.
	StateSucceeded State = "succeeded"
	// StateFailed defines that the current phase failed and may be retried.
	StateFailed State = "failed"
)

// CommitState holds the single-use artifacts of the commit phase. It is
// owned by exactly one orchestration run, mutated once when funding is
// observed and consumed once by reveal construction.
type CommitState struct {
	CommitAddress string
	KeyHandle     any // opaque signer-owned key material, passed through untouched.
	Funding       *bitcoin.UTXO
}

// RevealResult is the immutable terminal artifact of a successful
// orchestration run.
type RevealResult struct {
	TxID       string
	TotalFee   *big.Int
	MinerFee   *big.Int
	ServiceFee *big.Int
}
