// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"runeetch/bitcoin/runes"
)

// payloadFromInts builds a payload out of an int sequence for parse tests.
func payloadFromInts(t *testing.T, values ...int64) []byte {
	sequence := make([]*big.Int, 0, len(values))
	for _, value := range values {
		sequence = append(sequence, big.NewInt(value))
	}

	payload, err := runes.IntSequenceIntoPayload(sequence)
	require.NoError(t, err)

	return payload
}

func TestRunestone(t *testing.T) {
	var (
		heightStart uint64 = 840_000
		offsetEnd   uint64 = 1000
		pointer     uint32 = 1
	)

	rune_, err := runes.NewRuneFromString("CAT")
	require.NoError(t, err)

	runestone := &runes.Runestone{
		Etching: &runes.Etching{
			Divisibility: 2,
			Premine:      big.NewInt(500),
			Rune:         rune_,
			Spacers:      4,
			Symbol:       'X',
			Terms: &runes.Terms{
				Amount:      big.NewInt(1000),
				Cap:         big.NewInt(21),
				HeightStart: &heightStart,
				OffsetEnd:   &offsetEnd,
			},
			Turbo: true,
		},
		Pointer: &pointer,
	}

	t.Run("serialize wire order", func(t *testing.T) {
		payload, err := runestone.Serialize()
		require.NoError(t, err)

		sequence, err := runes.PayloadIntoIntSequence(payload)
		require.NoError(t, err)

		expected := []int64{
			2, 7, // flags: etching | terms | turbo.
			1, 2, // divisibility.
			3, 4, // spacers.
			5, 88, // symbol 'X'.
			4, 1371, // rune "CAT".
			6, 500, // premine.
			10, 1000, // amount.
			8, 21, // cap.
			12, 840_000, // height start.
			18, 1000, // offset end.
			22, 1, // pointer.
		}
		require.Len(t, sequence, len(expected))
		for idx, value := range expected {
			require.EqualValues(t, value, sequence[idx].Int64(), "position %d", idx)
		}
	})

	t.Run("amount precedes cap", func(t *testing.T) {
		payload, err := runestone.Serialize()
		require.NoError(t, err)

		sequence, err := runes.PayloadIntoIntSequence(payload)
		require.NoError(t, err)

		amountAt, capAt := -1, -1
		for idx := 0; idx < len(sequence); idx += 2 {
			switch runes.Tag(sequence[idx].Uint64()) {
			case runes.TagAmount:
				amountAt = idx
			case runes.TagCap:
				capAt = idx
			}
		}
		require.GreaterOrEqual(t, amountAt, 0)
		require.Greater(t, capAt, amountAt)
	})

	t.Run("round trip", func(t *testing.T) {
		payload, err := runestone.Serialize()
		require.NoError(t, err)

		parsed, err := runes.ParseRunestone(payload)
		require.NoError(t, err)
		require.Equal(t, runestone, parsed)
	})

	t.Run("mint reference round trip", func(t *testing.T) {
		mintstone := &runes.Runestone{
			Mint: &runes.MintReference{
				TxID:   "21bb3a5ad0e2d3b4b0a02b5cfce8e1f67ad4c8d4a2bd4d0f7c2c6d9f8e7a6b5c",
				Output: 3,
			},
		}

		payload, err := mintstone.Serialize()
		require.NoError(t, err)

		parsed, err := runes.ParseRunestone(payload)
		require.NoError(t, err)
		require.Equal(t, mintstone, parsed)
	})

	t.Run("serialize requires rune name", func(t *testing.T) {
		_, err := (&runes.Runestone{Etching: &runes.Etching{}}).Serialize()
		require.Error(t, err)
	})

	t.Run("unknown tags preserved, not re-serialized", func(t *testing.T) {
		payload := payloadFromInts(t, 2, 1, 4, 0, 99, 7)

		parsed, err := runes.ParseRunestone(payload)
		require.NoError(t, err)
		require.Len(t, parsed.Unknown, 1)
		require.Len(t, parsed.Unknown[runes.Tag(99)], 1)
		require.EqualValues(t, 7, parsed.Unknown[runes.Tag(99)][0].Int64())

		reserialized, err := parsed.Serialize()
		require.NoError(t, err)
		require.Equal(t, payloadFromInts(t, 2, 1, 4, 0), reserialized)
	})

	t.Run("cenotaphs", func(t *testing.T) {
		tests := []struct {
			name    string
			payload []byte
		}{
			{name: "unknown flag bit", payload: payloadFromInts(t, 2, 9)},
			{name: "terms without etching", payload: payloadFromInts(t, 2, 2)},
			{name: "etching field without flag", payload: payloadFromInts(t, 4, 1)},
			{name: "repeated rune tag", payload: payloadFromInts(t, 2, 1, 4, 0, 4, 1)},
			{name: "cenotaph tag", payload: payloadFromInts(t, 126, 0)},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				_, err := runes.ParseRunestone(test.payload)
				require.ErrorIs(t, err, runes.ErrCenotaph)
			})
		}
	})

	t.Run("truncated payloads", func(t *testing.T) {
		for _, payload := range [][]byte{{0x02}, {0x02, 0xC0}} {
			_, err := runes.ParseRunestone(payload)
			require.ErrorIs(t, err, runes.ErrTruncatedPayload)
		}
	})
}

func TestMintReference(t *testing.T) {
	ref := &runes.MintReference{
		TxID:   "21bb3a5ad0e2d3b4b0a02b5cfce8e1f67ad4c8d4a2bd4d0f7c2c6d9f8e7a6b5c",
		Output: 7,
	}

	t.Run("round trip", func(t *testing.T) {
		value, err := ref.Value()
		require.NoError(t, err)

		unpacked, err := runes.MintReferenceFromValue(value)
		require.NoError(t, err)
		require.Equal(t, ref, unpacked)
	})

	t.Run("output index occupies the low byte", func(t *testing.T) {
		value, err := ref.Value()
		require.NoError(t, err)
		require.EqualValues(t, 7, new(big.Int).And(value, big.NewInt(0xff)).Int64())
	})

	t.Run("invalid txid", func(t *testing.T) {
		_, err := (&runes.MintReference{TxID: "abcd", Output: 0}).Value()
		require.Error(t, err)

		_, err = (&runes.MintReference{TxID: "zz", Output: 0}).Value()
		require.Error(t, err)
	})

	t.Run("out of range value", func(t *testing.T) {
		tooBig := new(big.Int).Lsh(big.NewInt(1), 8*33)
		_, err := runes.MintReferenceFromValue(tooBig)
		require.Error(t, err)
	})
}
