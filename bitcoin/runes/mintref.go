// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"encoding/hex"
	"errors"
	"math/big"

	"runeetch/internal/reverse"
)

// txIDLength defines transaction id length in bytes.
const txIDLength = 32

// MintReference points at the etching transaction of the rune being minted.
type MintReference struct {
	TxID   string // hex-encoded transaction id.
	Output byte   // output index within the etching transaction.
}

// Value packs the reference into a single integer: the byte-reversed
// transaction id read as a big-endian number, shifted left one byte and
// OR'd with the output index.
func (ref *MintReference) Value() (*big.Int, error) {
	hash, err := hex.DecodeString(ref.TxID)
	if err != nil {
		return nil, err
	}
	if len(hash) != txIDLength {
		return nil, errors.New("invalid transaction id length")
	}

	value := new(big.Int).SetBytes(reverse.Bytes(hash))
	value.Lsh(value, 8)

	return value.Or(value, big.NewInt(int64(ref.Output))), nil
}

// MintReferenceFromValue unpacks a packed mint reference integer.
func MintReferenceFromValue(value *big.Int) (*MintReference, error) {
	if value.Sign() < 0 || value.BitLen() > (txIDLength+1)*8 {
		return nil, errors.New("mint reference is out of range")
	}

	output := byte(new(big.Int).And(value, big.NewInt(0xff)).Uint64())
	hash := new(big.Int).Rsh(value, 8).FillBytes(make([]byte, txIDLength))

	return &MintReference{
		TxID:   hex.EncodeToString(reverse.Bytes(hash)),
		Output: output,
	}, nil
}
