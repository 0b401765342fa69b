// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg"
)

// Network defines the closed set of supported bitcoin networks.
type Network string

const (
	// NetworkMain defines the production bitcoin network.
	NetworkMain Network = "main"
	// NetworkTest defines the testnet3 bitcoin network.
	NetworkTest Network = "test"
	// NetworkRegtest defines the local regression test network.
	NetworkRegtest Network = "regtest"
)

// Params returns chain parameters for the network.
func (network Network) Params() (*chaincfg.Params, error) {
	switch network {
	case NetworkMain:
		return &chaincfg.MainNetParams, nil
	case NetworkTest:
		return &chaincfg.TestNet3Params, nil
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	}

	return nil, fmt.Errorf("unknown network: %s", network)
}

// UTXO describes unspent transaction output data.
type UTXO struct {
	TxHash    string
	Index     uint32   // output index in transaction outputs.
	Amount    *big.Int // in satoshi.
	Script    []byte   // ScriptPubKey.
	Address   string   // output recipient address.
	Confirmed bool
}
