// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/zap"

	"runeetch/bitcoin"
	"runeetch/bitcoin/runes"
	"runeetch/internal/numbers"
)

// txVersion defines transaction version for reveal transactions.
const txVersion int32 = 2

// revealOutputs defines the reveal output set: runestone, recipient,
// service fee.
const revealOutputs = 3

// Signer produces commit keys and signatures on request. Key handles are
// opaque, the etcher passes them through untouched and never inspects
// key material.
type Signer interface {
	RequestKey(ctx context.Context, network bitcoin.Network) (address string, key any, err error)
	Sign(ctx context.Context, key any, serializedPSBT []byte) (signedTx []byte, err error)
}

// DataProvider supplies unspent outputs and accepts signed transactions
// for broadcasting.
type DataProvider interface {
	ListUnspent(ctx context.Context, address string, network bitcoin.Network) ([]bitcoin.UTXO, error)
	Broadcast(ctx context.Context, rawTx []byte) (txID string, err error)
}

// RevealParams describes data needed to build the reveal transaction.
type RevealParams struct {
	Etching          *runes.Etching
	FeeRatePerVByte  *big.Int // in satoshi per vByte.
	RecipientAddress string
}

// Etcher drives a single rune etching through the commit-reveal flow.
// One Etcher value owns one CommitState and must not be shared between
// concurrent etchings; the mutex keeps at most one reveal construction
// in flight against the funding output.
type Etcher struct {
	log      *zap.Logger
	config   Config
	signer   Signer
	provider DataProvider

	mu            sync.Mutex
	state         State
	retryState    State // state restored by Retry after a failure.
	commit        *CommitState
	signedTx      []byte
	pendingResult *RevealResult
}

// NewEtcher is a constructor for Etcher.
func NewEtcher(log *zap.Logger, config Config, signer Signer, provider DataProvider) *Etcher {
	if log == nil {
		log = zap.NewNop()
	}

	return &Etcher{
		log:      log,
		config:   config,
		signer:   signer,
		provider: provider,
		state:    StateIdle,
	}
}

// State returns the current orchestration state.
func (e *Etcher) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// CommitAddress returns the issued commit destination, empty before
// BeginCommit succeeds.
func (e *Etcher) CommitAddress() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.commit == nil {
		return ""
	}

	return e.commit.CommitAddress
}

// BeginCommit requests a fresh commit destination and key handle from the
// signer and starts awaiting payment.
func (e *Etcher) BeginCommit(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return "", fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	address, key, err := e.signer.RequestKey(callCtx, e.config.Network)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignerUnavailable, err)
	}

	e.commit = &CommitState{CommitAddress: address, KeyHandle: key}
	e.state = StateAwaitingPayment
	e.log.Info("commit address issued",
		zap.String("address", address),
		zap.String("network", string(e.config.Network)))

	return address, nil
}

// PollFunding checks the commit address for confirmed funding. Returns
// ErrPendingFunding while nothing confirmed has arrived; the caller polls
// again. With several funding outputs present the greatest value wins,
// first-seen among equal maxima.
func (e *Etcher) PollFunding(ctx context.Context) (*bitcoin.UTXO, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAwaitingPayment {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	utxos, err := e.provider.ListUnspent(callCtx, e.commit.CommitAddress, e.config.Network)
	if err != nil {
		e.state = StateFailed
		e.retryState = StateAwaitingPayment

		return nil, fmt.Errorf("list unspent: %w", err)
	}

	var funding *bitcoin.UTXO
	for idx := range utxos {
		utxo := &utxos[idx]
		if !utxo.Confirmed {
			continue
		}

		// strict comparison keeps the first-seen output among equal maxima.
		if funding == nil || numbers.IsGreater(utxo.Amount, funding.Amount) {
			funding = utxo
		}
	}
	if funding == nil {
		return nil, ErrPendingFunding
	}

	e.commit.Funding = funding
	e.state = StateFundingObserved
	e.log.Info("funding observed",
		zap.String("txid", funding.TxHash),
		zap.Uint32("vout", funding.Index),
		zap.String("value", funding.Amount.String()))

	return funding, nil
}

// BuildReveal constructs, signs and broadcasts the reveal transaction
// spending the observed funding output. On failure the funding output is
// retained so Retry can re-attempt reveal construction without re-polling.
func (e *Etcher) BuildReveal(ctx context.Context, params RevealParams) (*RevealResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateFundingObserved {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}
	e.state = StateRevealing

	result, err := e.reveal(ctx, params)
	if err != nil {
		e.state = StateFailed
		e.retryState = StateFundingObserved

		return nil, err
	}

	e.state = StateSucceeded

	return result, nil
}

// reveal runs the fallible part of BuildReveal.
func (e *Etcher) reveal(ctx context.Context, params RevealParams) (*RevealResult, error) {
	// drop artifacts of any earlier attempt so a failure before signing
	// leaves nothing stale to re-broadcast.
	e.signedTx = nil
	e.pendingResult = nil

	runestone := &runes.Runestone{Etching: params.Etching}
	payload, err := runestone.Serialize()
	if err != nil {
		return nil, err
	}

	runestoneScript, err := runes.EnvelopeScript(payload)
	if err != nil {
		return nil, err
	}

	var (
		funding    = e.commit.Funding
		size       = EstimateRevealSize(len(runestoneScript), revealOutputs)
		minerFee   = CalcMinerFee(size, params.FeeRatePerVByte)
		serviceFee = CalcServiceFee(minerFee, big.NewInt(e.config.MinServiceFee), big.NewInt(e.config.MaxServiceFee))
		dust       = big.NewInt(e.config.DustThreshold)
	)

	recipientValue := new(big.Int).Sub(funding.Amount, minerFee)
	recipientValue.Sub(recipientValue, serviceFee)
	if !numbers.IsGreater(recipientValue, dust) {
		return nil, &InsufficientFundsError{
			FundingValue:  funding.Amount,
			MinerFee:      minerFee,
			ServiceFee:    serviceFee,
			DustThreshold: dust,
		}
	}

	networkParams, err := e.config.Network.Params()
	if err != nil {
		return nil, err
	}

	tx, err := e.buildRevealTx(networkParams, params.RecipientAddress, runestoneScript, recipientValue, serviceFee)
	if err != nil {
		return nil, err
	}

	template, err := e.revealTemplate(networkParams, tx)
	if err != nil {
		return nil, err
	}

	signCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	signedTx, err := e.signer.Sign(signCtx, e.commit.KeyHandle, template)
	if err != nil {
		return nil, fmt.Errorf("sign reveal: %w", err)
	}

	// keep the signed transaction so a broadcast failure can be retried
	// without requesting another signature.
	e.signedTx = signedTx
	e.pendingResult = &RevealResult{
		TotalFee:   new(big.Int).Add(minerFee, serviceFee),
		MinerFee:   minerFee,
		ServiceFee: serviceFee,
	}
	e.log.Info("reveal constructed",
		zap.String("size", size.String()),
		zap.String("miner fee", minerFee.String()),
		zap.String("service fee", serviceFee.String()))

	txID, err := e.broadcast(ctx, signedTx)
	if err != nil {
		return nil, err
	}

	e.pendingResult.TxID = txID
	e.log.Info("reveal broadcast", zap.String("txid", txID))

	return e.pendingResult, nil
}

// RetryBroadcast re-submits the already-signed reveal transaction after a
// broadcast failure, without requesting a new signature.
func (e *Etcher) RetryBroadcast(ctx context.Context) (*RevealResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateFailed || len(e.signedTx) == 0 {
		return nil, fmt.Errorf("%w: no signed reveal to re-broadcast", ErrInvalidState)
	}

	txID, err := e.broadcast(ctx, e.signedTx)
	if err != nil {
		return nil, err
	}

	e.pendingResult.TxID = txID
	e.state = StateSucceeded
	e.log.Info("reveal broadcast", zap.String("txid", txID))

	return e.pendingResult, nil
}

// Retry rewinds a failed run to the phase that failed: back to awaiting
// payment when funding was never observed, back to funding observed when
// reveal construction failed. Funding is never re-requested.
func (e *Etcher) Retry() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateFailed {
		return fmt.Errorf("%w: %s", ErrInvalidState, e.state)
	}

	e.state = e.retryState

	return nil
}

// broadcast submits the signed transaction, distinguishing transient
// timeouts from definitive rejections.
func (e *Etcher) broadcast(ctx context.Context, signedTx []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	txID, err := e.provider.Broadcast(callCtx, signedTx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("broadcast timed out: %w", err)
		}

		return "", fmt.Errorf("%w: %v", ErrBroadcastRejected, err)
	}

	return txID, nil
}

// buildRevealTx assembles the reveal transaction: the funding output as
// the sole input, the zero-value runestone output, the recipient output
// and the service fee output.
func (e *Etcher) buildRevealTx(networkParams *chaincfg.Params, recipientAddress string,
	runestoneScript []byte, recipientValue, serviceFee *big.Int) (*wire.MsgTx, error) {
	funding := e.commit.Funding
	fundingHash, err := chainhash.NewHashFromStr(funding.TxHash)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(txVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(fundingHash, funding.Index), nil, nil))

	// runestone output (#0).
	tx.AddTxOut(wire.NewTxOut(0, runestoneScript))

	// recipient output (#1).
	recipientScript, err := payToAddrScript(recipientAddress, networkParams)
	if err != nil {
		return nil, err
	}
	tx.AddTxOut(wire.NewTxOut(recipientValue.Int64(), recipientScript))

	// service fee output (#2).
	collectionScript, err := payToAddrScript(e.config.CollectionAddress, networkParams)
	if err != nil {
		return nil, err
	}
	tx.AddTxOut(wire.NewTxOut(serviceFee.Int64(), collectionScript))

	return tx, nil
}

// revealTemplate converts the unsigned reveal transaction into a PSBT
// template with the funding witness data the signer needs.
func (e *Etcher) revealTemplate(networkParams *chaincfg.Params, tx *wire.MsgTx) ([]byte, error) {
	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, err
	}

	funding := e.commit.Funding
	fundingScript := funding.Script
	if len(fundingScript) == 0 {
		fundingScript, err = payToAddrScript(e.commit.CommitAddress, networkParams)
		if err != nil {
			return nil, err
		}
	}

	packet.Inputs[0].WitnessUtxo = wire.NewTxOut(funding.Amount.Int64(), fundingScript)
	packet.Inputs[0].SighashType = txscript.SigHashDefault

	w := bytes.NewBuffer(nil)
	if err = packet.Serialize(w); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// payToAddrScript decodes address for the network and returns its
// locking script.
func payToAddrScript(address string, networkParams *chaincfg.Params) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(address, networkParams)
	if err != nil {
		return nil, err
	}

	return txscript.PayToAddrScript(decoded)
}
