// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"bytes"
	"context"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"runeetch/bitcoin"
)

// ErrUnknownKeyHandle defines that the provided key handle was not issued
// by this signer.
var ErrUnknownKeyHandle = errors.New("unknown key handle")

// KeyHandle holds a freshly generated commit key. The key material is
// private to this package, callers only pass the handle back for signing.
type KeyHandle struct {
	privateKey *btcec.PrivateKey
}

// Signer provides taproot key generation and transaction signing logic.
type Signer struct{}

// NewSigner is a constructor for Signer.
func NewSigner() *Signer {
	return &Signer{}
}

// RequestKey generates a fresh key pair and returns the matching taproot
// address together with an opaque handle to the key.
func (signer *Signer) RequestKey(ctx context.Context, network bitcoin.Network) (string, any, error) {
	params, err := network.Params()
	if err != nil {
		return "", nil, err
	}

	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return "", nil, err
	}

	outputKey := txscript.ComputeTaprootKeyNoScript(privateKey.PubKey())
	address, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), params)
	if err != nil {
		return "", nil, err
	}

	return address.EncodeAddress(), &KeyHandle{privateKey: privateKey}, nil
}

// Sign signs every taproot input of the serialized PSBT with the handle's
// key (key-spend path) and returns the finalized transaction bytes.
func (signer *Signer) Sign(ctx context.Context, key any, serializedPSBT []byte) ([]byte, error) {
	handle, ok := key.(*KeyHandle)
	if !ok || handle == nil || handle.privateKey == nil {
		return nil, ErrUnknownKeyHandle
	}

	packet, err := psbt.NewFromRawBytes(bytes.NewReader(serializedPSBT), false)
	if err != nil {
		return nil, err
	}

	var (
		tx                   = packet.UnsignedTx
		prevOutputFetcherMap = make(map[wire.OutPoint]*wire.TxOut, len(tx.TxIn))
	)
	for idx, in := range packet.Inputs {
		prevOutputFetcherMap[tx.TxIn[idx].PreviousOutPoint] = in.WitnessUtxo
	}

	var (
		prevOutputFetcher = txscript.NewMultiPrevOutFetcher(prevOutputFetcherMap)
		sigHashes         = txscript.NewTxSigHashes(tx, prevOutputFetcher)
	)
	for idx := range packet.Inputs {
		input := &packet.Inputs[idx]
		witness, err := txscript.TaprootWitnessSignature(
			tx, sigHashes, idx, input.WitnessUtxo.Value,
			input.WitnessUtxo.PkScript, input.SighashType, handle.privateKey,
		)
		if err != nil {
			return nil, err
		}

		input.TaprootKeySpendSig = witness[0]
	}

	if err = psbt.MaybeFinalizeAll(packet); err != nil {
		return nil, err
	}

	signedTx, err := psbt.Extract(packet)
	if err != nil {
		return nil, err
	}

	w := bytes.NewBuffer(nil)
	if err = signedTx.Serialize(w); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}
