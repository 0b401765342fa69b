// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"fmt"
	"math/big"

	"runeetch/internal/sequencereader"
)

// ErrTruncatedPayload defines that payload ended in the middle of a field.
var ErrTruncatedPayload = errors.New("truncated payload")

// Message defines the untyped tag to values mapping of a parsed payload.
// A tag may legally repeat, values are accumulated in encounter order.
// Unrecognized tags are preserved, not dropped.
type Message struct {
	Fields map[Tag][]*big.Int
}

// ParsePayload decodes payload bytes into a Message.
func ParsePayload(payload []byte) (*Message, error) {
	sequence, err := PayloadIntoIntSequence(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedPayload, err)
	}

	return ParseMessage(sequencereader.New(sequence))
}

// ParseMessage reads sequential (tag, value) pairs from the integer
// sequence until it is exhausted.
func ParseMessage(sr *sequencereader.SequenceReader[*big.Int]) (*Message, error) {
	message := &Message{
		Fields: make(map[Tag][]*big.Int),
	}

	for sr.HasNext() {
		tagInt, _ := sr.Next() // skip error due to the loop condition check.

		value, err := sr.Next()
		if err != nil {
			return nil, ErrTruncatedPayload
		}

		message.Fields[Tag(tagInt.Uint64())] = append(message.Fields[Tag(tagInt.Uint64())], value)
	}

	return message, nil
}
