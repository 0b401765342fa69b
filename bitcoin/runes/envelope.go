// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/btcsuite/btcd/txscript"
)

const (
	// EnvelopeProtocolID defines the 3-byte ASCII identifier that marks
	// rune etching envelopes.
	EnvelopeProtocolID = "RUN"
	// EnvelopeVersion defines the envelope format version byte.
	EnvelopeVersion byte = 0x00
)

// ErrMalformedEnvelope defines that a script does not follow the fixed
// envelope template.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// FrameEnvelope wraps payload into the fixed envelope chunk sequence: a
// no-op marker, a conditional open, the protocol identifier, the version
// byte, the payload, an empty terminator and the conditional close. The
// payload's internal structure is not validated here.
func FrameEnvelope(payload []byte) [][]byte {
	return [][]byte{
		{txscript.OP_FALSE},
		{txscript.OP_IF},
		[]byte(EnvelopeProtocolID),
		{EnvelopeVersion},
		payload,
		{},
		{txscript.OP_ENDIF},
	}
}

// EnvelopeScript assembles the envelope chunks into an output script.
// The falsified conditional keeps interpreters from executing the payload.
// Full data pushes are used so chunks are never canonicalized into
// small-integer opcodes.
func EnvelopeScript(payload []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_FALSE).
		AddOp(txscript.OP_IF).
		AddFullData([]byte(EnvelopeProtocolID)).
		AddFullData([]byte{EnvelopeVersion}).
		AddFullData(payload).
		AddOp(txscript.OP_0).
		AddOp(txscript.OP_ENDIF).
		Script()
}

// ParseEnvelopeScript validates the fixed envelope template and returns
// the payload bytes it carries.
func ParseEnvelopeScript(script []byte) ([]byte, error) {
	// OP_FALSE + OP_IF + pushes + OP_0 + OP_ENDIF.
	if len(script) < 4 {
		return nil, ErrMalformedEnvelope
	}
	if script[0] != txscript.OP_FALSE || script[1] != txscript.OP_IF {
		return nil, ErrMalformedEnvelope
	}

	reader := bytes.NewReader(script[2:])

	protocolID, err := readDataPush(reader)
	if err != nil || string(protocolID) != EnvelopeProtocolID {
		return nil, ErrMalformedEnvelope
	}

	version, err := readDataPush(reader)
	if err != nil || len(version) != 1 || version[0] != EnvelopeVersion {
		return nil, ErrMalformedEnvelope
	}

	payload, err := readDataPush(reader)
	if err != nil {
		return nil, ErrMalformedEnvelope
	}

	terminator, err := reader.ReadByte()
	if err != nil || terminator != txscript.OP_0 {
		return nil, ErrMalformedEnvelope
	}

	closer, err := reader.ReadByte()
	if err != nil || closer != txscript.OP_ENDIF || reader.Len() != 0 {
		return nil, ErrMalformedEnvelope
	}

	return payload, nil
}

// readDataPush reads a single OP_DATA_<n> or OP_PUSHDATA<n> data push.
func readDataPush(reader *bytes.Reader) ([]byte, error) {
	op, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	var size int
	switch {
	case op >= txscript.OP_DATA_1 && op <= txscript.OP_DATA_75:
		size = int(op)
	case op == txscript.OP_PUSHDATA1:
		length, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}

		size = int(length)
	case op == txscript.OP_PUSHDATA2:
		var length [2]byte
		if _, err = io.ReadFull(reader, length[:]); err != nil {
			return nil, err
		}

		size = int(binary.LittleEndian.Uint16(length[:]))
	case op == txscript.OP_PUSHDATA4:
		var length [4]byte
		if _, err = io.ReadFull(reader, length[:]); err != nil {
			return nil, err
		}

		size = int(binary.LittleEndian.Uint32(length[:]))
	default:
		return nil, ErrMalformedEnvelope
	}

	data := make([]byte, size)
	if _, err = io.ReadFull(reader, data); err != nil {
		return nil, err
	}

	return data, nil
}
