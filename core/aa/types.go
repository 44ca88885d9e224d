// Copyright 2026 The go-obsidian Authors
// This file is part of the obsidian-account library.
//
// Core types shared by the smart account and the EntryPoint relay.

package aa

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Host is the minimal interface the enclosing ledger exposes to this
// package. Call performs a generic message call from one address to
// another, forwarding the host's entire remaining gas budget; a failed
// call must leave balances as they were before the attempt.
type Host interface {
	GetBalance(addr common.Address) *uint256.Int
	SubBalance(addr common.Address, amount *uint256.Int)
	AddBalance(addr common.Address, amount *uint256.Int)
	Call(from, to common.Address, value *uint256.Int, input []byte) CallResult
}

// CallResult is the raw outcome of a single host call. It is transient
// and never retained past the dispatch that produced it.
type CallResult struct {
	Success    bool
	ReturnData []byte
}

// UserOperation is a single owner-authorized action submitted to an
// account through the EntryPoint.
type UserOperation struct {
	Sender               common.Address `json:"sender"`
	Dest                 common.Address `json:"dest"`
	Value                *uint256.Int   `json:"value"`
	CallData             []byte         `json:"callData"`
	CallGasLimit         uint64         `json:"callGasLimit"`
	VerificationGasLimit uint64         `json:"verificationGasLimit"`
	PreVerificationGas   uint64         `json:"preVerificationGas"`
	MaxFeePerGas         *uint256.Int   `json:"maxFeePerGas"`
	Signature            []byte         `json:"signature"`
}

// TotalGasLimit returns total gas required for the operation.
func (op *UserOperation) TotalGasLimit() uint64 {
	return op.CallGasLimit + op.VerificationGasLimit + op.PreVerificationGas
}

// ValidationResult is the binary outcome of signature validation,
// plus the time window within which the operation is valid. This
// account always emits an unrestricted window (0, 0) on acceptance.
type ValidationResult struct {
	SigFailed  bool
	ValidAfter uint64 // Timestamp after which the op is valid (0 = always)
	ValidUntil uint64 // Timestamp until which the op is valid (0 = forever)
}

// Packed returns the EIP-4337 validationData word:
// sigFailed in the low 160 bits, validUntil at bit 160, validAfter at
// bit 208 (48 bits each).
func (r *ValidationResult) Packed() *uint256.Int {
	packed := new(uint256.Int)
	if r.SigFailed {
		packed.SetUint64(1)
	}
	until := new(uint256.Int).SetUint64(r.ValidUntil & timestampMask)
	packed.Or(packed, until.Lsh(until, 160))
	after := new(uint256.Int).SetUint64(r.ValidAfter & timestampMask)
	packed.Or(packed, after.Lsh(after, 208))
	return packed
}

// 48-bit timestamps, per the EIP-4337 validationData layout.
const timestampMask = 1<<48 - 1

// UserOpReceipt contains execution results for a processed UserOperation.
type UserOpReceipt struct {
	UserOpHash    common.Hash    `json:"userOpHash"`
	Sender        common.Address `json:"sender"`
	Success       bool           `json:"success"`
	ActualGasCost *uint256.Int   `json:"actualGasCost"`
	ActualGasUsed uint64         `json:"actualGasUsed"`
	Reason        string         `json:"reason,omitempty"` // Failure reason, if any
	RevertData    []byte         `json:"revertData,omitempty"`
}
