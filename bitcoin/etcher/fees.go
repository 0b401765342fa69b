// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etcher

import (
	"math/big"

	"runeetch/internal/numbers"
)

// serviceFeeDivisor defines the service fee as a tenth of the miner fee
// before clamping.
const serviceFeeDivisor = 10

var (
	// headerSizeVBytes defines rough tx header size in vBytes.
	headerSizeVBytes = big.NewInt(11)
	// inputSizeVBytes defines rough taproot input size in vBytes.
	inputSizeVBytes = big.NewInt(90)
	// outputSizeVBytes defines rough tx output size in vBytes.
	outputSizeVBytes = big.NewInt(30)
)

// EstimateRevealSize returns the rough reveal transaction size in vBytes:
// one taproot input, the given number of value outputs, and the runestone
// script on top.
func EstimateRevealSize(runestoneScriptLen, outputs int) *big.Int {
	size := new(big.Int).Set(headerSizeVBytes)
	size.Add(size, inputSizeVBytes)
	size.Add(size, new(big.Int).Mul(outputSizeVBytes, big.NewInt(int64(outputs))))

	return size.Add(size, big.NewInt(int64(runestoneScriptLen)))
}

// CalcMinerFee returns the miner fee for the estimated size at the given
// fee rate in satoshi per vByte.
func CalcMinerFee(size, feeRatePerVByte *big.Int) *big.Int {
	return new(big.Int).Mul(size, feeRatePerVByte)
}

// CalcServiceFee clamps a tenth of the miner fee into the configured bounds.
func CalcServiceFee(minerFee, minFee, maxFee *big.Int) *big.Int {
	fee := new(big.Int).Div(minerFee, big.NewInt(serviceFeeDivisor))

	return new(big.Int).Set(numbers.Min(numbers.Max(fee, minFee), maxFee))
}
