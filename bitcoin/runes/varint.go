// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/aviate-labs/leb128"
)

// ErrMalformedVarInt defines that varint data ended before a terminating byte.
var ErrMalformedVarInt = errors.New("malformed varint")

const (
	// continuationBit marks that more varint bytes follow.
	continuationBit byte = 0x80
	// signGuardBit is reserved by the format as a sign-continuation guard,
	// the final byte of an encoded value must have it clear.
	signGuardBit byte = 0x40
)

// sevenBitMask defines the low varint group bits as *big.Int.
var sevenBitMask = big.NewInt(0x7f)

// EncodeVarInt encodes a non-negative arbitrary-precision integer into
// little-endian 7-bit groups. Every byte except the last carries the
// continuation bit; the encoding terminates only when the remaining value
// is zero and the guard bit of the just-emitted byte is clear.
func EncodeVarInt(value *big.Int) ([]byte, error) {
	if value.Sign() < 0 {
		return nil, errors.New("varint value is negative")
	}

	var (
		rest = new(big.Int).Set(value)
		low  = new(big.Int)
		data = make([]byte, 0, value.BitLen()/7+1)
	)
	for {
		group := byte(low.And(rest, sevenBitMask).Uint64())
		rest.Rsh(rest, 7)
		if rest.Sign() == 0 && group&signGuardBit == 0 {
			return append(data, group), nil
		}

		data = append(data, group|continuationBit)
	}
}

// DecodeVarInt decodes a single varint from the beginning of data.
// Returns the decoded value and the number of bytes consumed.
func DecodeVarInt(data []byte) (*big.Int, int, error) {
	reader := bytes.NewReader(data)
	value, err := leb128.DecodeUnsigned(reader)
	if err != nil {
		return nil, 0, ErrMalformedVarInt
	}

	return value, len(data) - reader.Len(), nil
}

// PayloadIntoIntSequence decodes varint payload into integer sequence.
func PayloadIntoIntSequence(payload []byte) ([]*big.Int, error) {
	sequence := make([]*big.Int, 0)
	data := bytes.NewReader(payload)
	for data.Len() > 0 {
		num, err := leb128.DecodeUnsigned(data)
		if err != nil {
			return nil, ErrMalformedVarInt
		}

		sequence = append(sequence, num)
	}

	return sequence, nil
}

// IntSequenceIntoPayload encodes integer sequence into varint payload.
func IntSequenceIntoPayload(sequence []*big.Int) ([]byte, error) {
	payload := make([]byte, 0)
	for _, num := range sequence {
		data, err := EncodeVarInt(num)
		if err != nil {
			return nil, err
		}

		payload = append(payload, data...)
	}

	return payload, nil
}
