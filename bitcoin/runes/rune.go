// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"math/big"
	"strings"

	"runeetch/internal/numbers"
	"runeetch/internal/reverse"
)

// Spacer defines the decorative separator glyph for rune display names.
const Spacer = '•'

// MaxNameLength defines maximum name length with spacers stripped.
const MaxNameLength = 28

// maxSpacerPosition bounds spacer positions to the bitmask width.
const maxSpacerPosition = 31

// ErrInvalidNameCharacter defines that the name contains symbols outside A-Z
// or is empty.
var ErrInvalidNameCharacter = errors.New("invalid name character")

// ErrNameTooLong defines that the stripped name exceeds MaxNameLength.
var ErrNameTooLong = errors.New("name is too long")

// base26 defines 26 as *big.Int.
var base26 = big.NewInt(26)

// Rune defines rune names encoded as base-26 integers, A=0 through Z=25,
// most significant character first.
type Rune struct {
	value *big.Int
}

// NewRuneFromString creates new Rune from a plain name.
// Valid symbols are A-Z only, empty names are rejected.
func NewRuneFromString(name string) (*Rune, error) {
	if len(name) == 0 {
		return nil, ErrInvalidNameCharacter
	}
	if len(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}

	value := big.NewInt(0)
	for _, char := range name {
		if char < 'A' || char > 'Z' {
			return nil, ErrInvalidNameCharacter
		}

		value.Mul(value, base26)
		value.Add(value, big.NewInt(int64(char-'A')))
	}

	return &Rune{value: value}, nil
}

// NewRuneFromDisplay creates new Rune from a display name with spacer
// glyphs, returning the computed spacer bitmask alongside. Bit i of the
// mask is set when the spacer occupies position i of the display name.
func NewRuneFromDisplay(display string) (*Rune, uint32, error) {
	display = strings.ToUpper(display)
	if strings.HasSuffix(display, string(Spacer)) {
		return nil, 0, errors.New("trailing spacer")
	}

	var (
		spacers uint32
		idx     uint
	)
	for _, char := range display {
		if char == Spacer {
			if idx > maxSpacerPosition {
				return nil, 0, errors.New("spacer position is out of range")
			}

			spacers |= 1 << idx
		}
		idx++
	}

	stripped := strings.Map(func(r rune) rune {
		if r == Spacer {
			return -1
		}

		return r
	}, display)

	rune_, err := NewRuneFromString(stripped)
	if err != nil {
		return nil, 0, err
	}

	return rune_, spacers, nil
}

// NewRuneFromNumber creates new Rune from number.
func NewRuneFromNumber(number *big.Int) (*Rune, error) {
	if number.Sign() < 0 || numbers.IsGreater(number, numbers.MaxUInt128Value) {
		return nil, errors.New("invalid number")
	}

	return &Rune{value: number}, nil
}

// Value returns Rune name as number.
func (r *Rune) Value() *big.Int {
	return new(big.Int).Set(r.value)
}

// String returns Rune name as string. The zero value decodes to "A".
func (r *Rune) String() string {
	if r.value.Sign() == 0 {
		return "A"
	}

	var (
		value = new(big.Int).Set(r.value)
		digit = new(big.Int)
		name  = make([]byte, 0, MaxNameLength)
	)
	for value.Sign() > 0 {
		value.DivMod(value, base26, digit)
		name = append(name, byte('A'+digit.Int64()))
	}

	return string(reverse.Bytes(name))
}

// DisplayString returns the name with the spacer glyph inserted at every
// position marked in the spacers bitmask.
func (r *Rune) DisplayString(spacers uint32) string {
	var (
		name    = r.String()
		display strings.Builder
		pos     uint
	)
	for idx := 0; idx < len(name); pos++ {
		if pos <= maxSpacerPosition && spacers&(1<<pos) != 0 {
			display.WriteRune(Spacer)
			continue
		}

		display.WriteByte(name[idx])
		idx++
	}

	return display.String()
}
