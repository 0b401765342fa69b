// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package sequencereader

import (
	"errors"
)

// SequenceReader walks a slice one element at a time.
type SequenceReader[T any] struct {
	seq []T
	idx int
}

// New is a constructor for SequenceReader.
func New[T any](seq []T) *SequenceReader[T] {
	return &SequenceReader[T]{seq: seq}
}

// HasNext returns true while elements remain.
func (sr *SequenceReader[T]) HasNext() bool {
	return sr.idx < len(sr.seq)
}

// Next returns the next element, or an error once the sequence is exhausted.
func (sr *SequenceReader[T]) Next() (T, error) {
	if !sr.HasNext() {
		return *new(T), errors.New("sequence is exhausted")
	}

	sr.idx++

	return sr.seq[sr.idx-1], nil
}

// Len returns how many elements are left.
func (sr *SequenceReader[T]) Len() int {
	return len(sr.seq) - sr.idx
}
