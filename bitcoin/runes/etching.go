// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"math/big"

	"runeetch/internal/numbers"
)

// MaxDivisibility defines maximum divisibility for rune etchings.
const MaxDivisibility byte = 18

// Etching defines values to create new rune.
type Etching struct {
	Divisibility byte
	Premine      *big.Int
	Rune         *Rune
	Spacers      uint32
	Symbol       rune
	Terms        *Terms
	Turbo        bool
}

// Terms defines open mint parameters of an Etching. Amount and Cap are
// mandatory once Terms is present, the height and offset bounds are not.
type Terms struct {
	Amount      *big.Int
	Cap         *big.Int
	HeightStart *uint64
	HeightEnd   *uint64
	OffsetStart *uint64
	OffsetEnd   *uint64
}

// Validate checks the etching invariants before serialization.
func (etching *Etching) Validate() error {
	switch {
	case etching.Rune == nil:
		return errors.New("etching rune name is required")
	case etching.Divisibility > MaxDivisibility:
		return errors.New("too large divisibility")
	case etching.Premine != nil && numbers.IsNegative(etching.Premine):
		return errors.New("negative premine")
	}

	if terms := etching.Terms; terms != nil {
		switch {
		case terms.Amount == nil || terms.Cap == nil:
			return errors.New("mint terms require both amount and cap")
		case numbers.IsNegative(terms.Amount) || numbers.IsNegative(terms.Cap):
			return errors.New("negative mint terms")
		}
	}

	return nil
}
