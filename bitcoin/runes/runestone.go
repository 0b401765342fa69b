// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"math/big"
)

// ErrCenotaph defines a payload that violates rune protocol rules.
var ErrCenotaph = errors.New("cenotaph")

// Runestone abstractly defines the etching payload fields.
type Runestone struct {
	Etching *Etching
	Mint    *MintReference
	Pointer *uint32

	// Unknown holds tags that were parsed but not recognized. They are
	// preserved for forward compatibility and ignored on serialization.
	Unknown map[Tag][]*big.Int
}

// taggedField pairs a tag with one value for ordered serialization.
type taggedField struct {
	tag   Tag
	value *big.Int
}

// Serialize returns the runestone as payload bytes: back-to-back
// varint(tag) || varint(value) pairs in fixed wire order.
func (runestone *Runestone) Serialize() ([]byte, error) {
	fields, err := runestone.fields()
	if err != nil {
		return nil, err
	}

	sequence := make([]*big.Int, 0, len(fields)*2)
	for _, field := range fields {
		sequence = append(sequence, field.tag.BigInt(), field.value)
	}

	return IntSequenceIntoPayload(sequence)
}

// fields returns the tagged fields in wire order: flags first, then
// etching fields, then mint terms, then the mint reference, then the
// pointer. The order is a wire-format invariant.
func (runestone *Runestone) fields() ([]taggedField, error) {
	fields := make([]taggedField, 0, 16)

	if etching := runestone.Etching; etching != nil {
		if err := etching.Validate(); err != nil {
			return nil, err
		}

		flags := AddFlag(big.NewInt(0), FlagEtching)
		if etching.Terms != nil {
			AddFlag(flags, FlagTerms)
		}
		if etching.Turbo {
			AddFlag(flags, FlagTurbo)
		}
		fields = append(fields, taggedField{TagFlags, flags})

		if etching.Divisibility != 0 {
			fields = append(fields, taggedField{TagDivisibility, big.NewInt(int64(etching.Divisibility))})
		}
		if etching.Spacers != 0 {
			fields = append(fields, taggedField{TagSpacers, big.NewInt(int64(etching.Spacers))})
		}
		if etching.Symbol != 0 {
			fields = append(fields, taggedField{TagSymbol, big.NewInt(int64(etching.Symbol))})
		}

		fields = append(fields, taggedField{TagRune, etching.Rune.Value()})

		if etching.Premine != nil {
			fields = append(fields, taggedField{TagPremine, etching.Premine})
		}

		if terms := etching.Terms; terms != nil {
			fields = append(fields,
				taggedField{TagAmount, terms.Amount},
				taggedField{TagCap, terms.Cap},
			)
			if terms.HeightStart != nil {
				fields = append(fields, taggedField{TagHeightStart, new(big.Int).SetUint64(*terms.HeightStart)})
			}
			if terms.HeightEnd != nil {
				fields = append(fields, taggedField{TagHeightEnd, new(big.Int).SetUint64(*terms.HeightEnd)})
			}
			if terms.OffsetStart != nil {
				fields = append(fields, taggedField{TagOffsetStart, new(big.Int).SetUint64(*terms.OffsetStart)})
			}
			if terms.OffsetEnd != nil {
				fields = append(fields, taggedField{TagOffsetEnd, new(big.Int).SetUint64(*terms.OffsetEnd)})
			}
		}
	}

	if runestone.Mint != nil {
		value, err := runestone.Mint.Value()
		if err != nil {
			return nil, err
		}

		fields = append(fields, taggedField{TagMint, value})
	}

	if runestone.Pointer != nil {
		fields = append(fields, taggedField{TagPointer, big.NewInt(int64(*runestone.Pointer))})
	}

	return fields, nil
}

// ParseRunestone parses a Runestone back from payload bytes.
func ParseRunestone(payload []byte) (*Runestone, error) {
	message, err := ParsePayload(payload)
	if err != nil {
		return nil, err
	}

	runestone := new(Runestone)

	var etching, terms, turbo bool
	if flags, ok := message.Fields[TagFlags]; ok {
		if len(flags) != 1 {
			return nil, ErrCenotaph
		}

		rest := new(big.Int).Set(flags[0])
		etching = HasFlag(rest, FlagEtching)
		if etching {
			rest.Sub(rest, FlagEtching)
		}

		terms = HasFlag(rest, FlagTerms)
		if terms {
			rest.Sub(rest, FlagTerms)
		}

		turbo = HasFlag(rest, FlagTurbo)
		if turbo {
			rest.Sub(rest, FlagTurbo)
		}

		if rest.Sign() != 0 {
			return nil, ErrCenotaph
		}

		delete(message.Fields, TagFlags)
	}

	if terms && !etching {
		return nil, ErrCenotaph
	}
	if etching {
		runestone.Etching = &Etching{Turbo: turbo}
		if terms {
			runestone.Etching.Terms = new(Terms)
		}
	}

	for tag, ints := range message.Fields {
		switch tag {
		case TagRune:
			err = fillSingle(etching, ints, func(value *big.Int) error {
				runestone.Etching.Rune, err = NewRuneFromNumber(value)
				return err
			})
		case TagDivisibility:
			err = fillSingle(etching, ints, func(value *big.Int) error {
				divisibility := byte(value.Uint64())
				if divisibility > MaxDivisibility {
					return errors.New("too large divisibility")
				}

				runestone.Etching.Divisibility = divisibility
				return nil
			})
		case TagSpacers:
			err = fillSingle(etching, ints, func(value *big.Int) error {
				runestone.Etching.Spacers = uint32(value.Uint64())
				return nil
			})
		case TagSymbol:
			err = fillSingle(etching, ints, func(value *big.Int) error {
				runestone.Etching.Symbol = rune(value.Int64())
				return nil
			})
		case TagPremine:
			err = fillSingle(etching, ints, func(value *big.Int) error {
				runestone.Etching.Premine = value
				return nil
			})
		case TagAmount:
			err = fillSingle(terms, ints, func(value *big.Int) error {
				runestone.Etching.Terms.Amount = value
				return nil
			})
		case TagCap:
			err = fillSingle(terms, ints, func(value *big.Int) error {
				runestone.Etching.Terms.Cap = value
				return nil
			})
		case TagHeightStart:
			err = fillSingle(terms, ints, func(value *big.Int) error {
				height := value.Uint64()
				runestone.Etching.Terms.HeightStart = &height
				return nil
			})
		case TagHeightEnd:
			err = fillSingle(terms, ints, func(value *big.Int) error {
				height := value.Uint64()
				runestone.Etching.Terms.HeightEnd = &height
				return nil
			})
		case TagOffsetStart:
			err = fillSingle(terms, ints, func(value *big.Int) error {
				offset := value.Uint64()
				runestone.Etching.Terms.OffsetStart = &offset
				return nil
			})
		case TagOffsetEnd:
			err = fillSingle(terms, ints, func(value *big.Int) error {
				offset := value.Uint64()
				runestone.Etching.Terms.OffsetEnd = &offset
				return nil
			})
		case TagMint:
			err = fillSingle(true, ints, func(value *big.Int) error {
				runestone.Mint, err = MintReferenceFromValue(value)
				return err
			})
		case TagPointer:
			err = fillSingle(true, ints, func(value *big.Int) error {
				pointer := uint32(value.Uint64())
				runestone.Pointer = &pointer
				return nil
			})
		case TagCenotaph:
			err = ErrCenotaph
		default:
			if runestone.Unknown == nil {
				runestone.Unknown = make(map[Tag][]*big.Int)
			}

			runestone.Unknown[tag] = ints
		}

		if err != nil {
			return nil, err
		}
	}

	return runestone, nil
}

// fillSingle guards a known single-value field: the governing flag must be
// set and the tag must not repeat.
func fillSingle(allowed bool, ints []*big.Int, fill func(*big.Int) error) error {
	if !allowed || len(ints) != 1 {
		return ErrCenotaph
	}

	return fill(ints[0])
}
