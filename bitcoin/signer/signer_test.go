// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package signer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"runeetch/bitcoin"
	"runeetch/bitcoin/signer"
)

const testPrevTxHash = "5c6b7a8e9f6d2c7c0f4dbda2d4c8d47af6e1e8fc5c2ba0b0b4d3e2d05a3abb21"

func TestSigner(t *testing.T) {
	ctx := context.Background()
	s := signer.NewSigner()

	t.Run("request key", func(t *testing.T) {
		tests := []struct {
			network bitcoin.Network
			prefix  string
		}{
			{network: bitcoin.NetworkMain, prefix: "bc1p"},
			{network: bitcoin.NetworkTest, prefix: "tb1p"},
			{network: bitcoin.NetworkRegtest, prefix: "bcrt1p"},
		}
		for _, test := range tests {
			address, key, err := s.RequestKey(ctx, test.network)
			require.NoError(t, err)
			require.NotNil(t, key)
			require.True(t, strings.HasPrefix(address, test.prefix), address)

			params, err := test.network.Params()
			require.NoError(t, err)

			decoded, err := btcutil.DecodeAddress(address, params)
			require.NoError(t, err)
			require.True(t, decoded.IsForNet(params))
		}
	})

	t.Run("keys are fresh", func(t *testing.T) {
		first, _, err := s.RequestKey(ctx, bitcoin.NetworkRegtest)
		require.NoError(t, err)

		second, _, err := s.RequestKey(ctx, bitcoin.NetworkRegtest)
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("unknown network", func(t *testing.T) {
		_, _, err := s.RequestKey(ctx, "signet")
		require.Error(t, err)
	})

	t.Run("unknown key handle", func(t *testing.T) {
		_, err := s.Sign(ctx, "not a handle", nil)
		require.ErrorIs(t, err, signer.ErrUnknownKeyHandle)

		_, err = s.Sign(ctx, nil, nil)
		require.ErrorIs(t, err, signer.ErrUnknownKeyHandle)
	})

	t.Run("sign key-spend", func(t *testing.T) {
		address, key, err := s.RequestKey(ctx, bitcoin.NetworkRegtest)
		require.NoError(t, err)

		params, err := bitcoin.NetworkRegtest.Params()
		require.NoError(t, err)

		decoded, err := btcutil.DecodeAddress(address, params)
		require.NoError(t, err)

		script, err := txscript.PayToAddrScript(decoded)
		require.NoError(t, err)

		prevHash, err := chainhash.NewHashFromStr(testPrevTxHash)
		require.NoError(t, err)

		tx := wire.NewMsgTx(2)
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(prevHash, 0), nil, nil))
		tx.AddTxOut(wire.NewTxOut(9000, script))

		packet, err := psbt.NewFromUnsignedTx(tx)
		require.NoError(t, err)
		packet.Inputs[0].WitnessUtxo = wire.NewTxOut(10_000, script)
		packet.Inputs[0].SighashType = txscript.SigHashDefault

		var serialized bytes.Buffer
		require.NoError(t, packet.Serialize(&serialized))

		signed, err := s.Sign(ctx, key, serialized.Bytes())
		require.NoError(t, err)

		var final wire.MsgTx
		require.NoError(t, final.Deserialize(bytes.NewReader(signed)))
		require.Len(t, final.TxIn, 1)
		require.Len(t, final.TxIn[0].Witness, 1)
		// schnorr signature with default sighash carries no sighash byte.
		require.Len(t, final.TxIn[0].Witness[0], 64)
	})

	t.Run("sign rejects malformed psbt", func(t *testing.T) {
		_, key, err := s.RequestKey(ctx, bitcoin.NetworkRegtest)
		require.NoError(t, err)

		_, err = s.Sign(ctx, key, []byte("not a psbt"))
		require.Error(t, err)
	})
}
