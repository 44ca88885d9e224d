// Copyright 2026 The go-obsidian Authors
// This file is part of the obsidian-account library.
//
// EntryPoint is the trusted relay that submits user operations to
// registered accounts for validation and execution.

package aa

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var (
	// Well-known native EntryPoint address (deterministic CREATE2 style)
	NativeEntryPointAddress = common.HexToAddress("0x0000000000000000000000000000000000AA4337")

	ErrInvalidUserOp       = errors.New("invalid user operation")
	ErrValidationFailed    = errors.New("user operation validation failed")
	ErrUnknownSender       = errors.New("sender account is not registered")
	ErrInsufficientPrefund = errors.New("insufficient prefund for user operation")
)

// AccountValidator is implemented by smart accounts driven by the
// EntryPoint.
type AccountValidator interface {
	ValidateUserOp(host Host, caller common.Address, op *UserOperation, opHash common.Hash, missingFunds *uint256.Int) (*ValidationResult, error)
	Execute(host Host, caller, dest common.Address, value *uint256.Int, payload []byte) error
}

// EntryPoint processes user operations against registered accounts.
type EntryPoint struct {
	address common.Address

	// Registered accounts (by account address)
	accounts map[common.Address]AccountValidator

	// Deposit ledger: address -> prepaid balance for gas
	deposits map[common.Address]*uint256.Int
}

// NewEntryPoint creates a new EntryPoint relay.
func NewEntryPoint() *EntryPoint {
	return &EntryPoint{
		address:  NativeEntryPointAddress,
		accounts: make(map[common.Address]AccountValidator),
		deposits: make(map[common.Address]*uint256.Int),
	}
}

// Address returns the entrypoint address.
func (ep *EntryPoint) Address() common.Address {
	return ep.address
}

// RegisterAccount registers the account living at addr.
func (ep *EntryPoint) RegisterAccount(addr common.Address, v AccountValidator) {
	ep.accounts[addr] = v
}

// GetDeposit returns the deposit balance for an address.
func (ep *EntryPoint) GetDeposit(addr common.Address) *uint256.Int {
	if d, ok := ep.deposits[addr]; ok {
		return new(uint256.Int).Set(d)
	}
	return new(uint256.Int)
}

// AddDeposit adds to the deposit balance for an address.
func (ep *EntryPoint) AddDeposit(addr common.Address, amount *uint256.Int) {
	if _, ok := ep.deposits[addr]; !ok {
		ep.deposits[addr] = new(uint256.Int)
	}
	ep.deposits[addr].Add(ep.deposits[addr], amount)
}

// WithdrawDeposit withdraws from the deposit balance.
func (ep *EntryPoint) WithdrawDeposit(addr common.Address, amount *uint256.Int) error {
	deposit := ep.GetDeposit(addr)
	if deposit.Lt(amount) {
		return fmt.Errorf("withdraw amount %s exceeds deposit %s", amount, deposit)
	}
	ep.subDeposit(addr, amount)
	return nil
}

// subDeposit decrements a deposit balance, creating the entry for
// addresses that never deposited.
func (ep *EntryPoint) subDeposit(addr common.Address, amount *uint256.Int) {
	if _, ok := ep.deposits[addr]; !ok {
		ep.deposits[addr] = new(uint256.Int)
	}
	ep.deposits[addr].Sub(ep.deposits[addr], amount)
}

// RequiredPrefund computes the max gas cost for a user operation.
func (ep *EntryPoint) RequiredPrefund(op *UserOperation) *uint256.Int {
	if op == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Mul(
		new(uint256.Int).SetUint64(op.TotalGasLimit()),
		safeU256(op.MaxFeePerGas),
	)
}

// HandleOps processes a batch of user operations. Failed ops still
// produce a receipt with Success=false.
func (ep *EntryPoint) HandleOps(host Host, ops []*UserOperation, beneficiary common.Address) ([]*UserOpReceipt, error) {
	receipts := make([]*UserOpReceipt, 0, len(ops))

	for _, op := range ops {
		if op == nil {
			receipts = append(receipts, &UserOpReceipt{Success: false, Reason: ErrInvalidUserOp.Error()})
			continue
		}
		receipt, err := ep.handleSingleOp(host, op, beneficiary)
		if err != nil {
			log.Warn("UserOp failed", "sender", op.Sender, "err", err)
			if receipt == nil {
				receipt = &UserOpReceipt{
					UserOpHash: ep.UserOpHash(op),
					Sender:     op.Sender,
					Success:    false,
					Reason:     err.Error(),
				}
			}
		}
		receipts = append(receipts, receipt)
	}

	return receipts, nil
}

// handleSingleOp processes one user operation through the full lifecycle.
func (ep *EntryPoint) handleSingleOp(host Host, op *UserOperation, beneficiary common.Address) (*UserOpReceipt, error) {
	if op == nil || op.MaxFeePerGas == nil || op.MaxFeePerGas.IsZero() {
		return nil, ErrInvalidUserOp
	}
	acct, ok := ep.accounts[op.Sender]
	if !ok {
		return nil, ErrUnknownSender
	}
	opHash := ep.UserOpHash(op)

	// Phase 1: required prefund and the portion the account still owes
	// on top of its deposit.
	requiredPrefund := ep.RequiredPrefund(op)
	missing := new(uint256.Int)
	if deposit := ep.GetDeposit(op.Sender); deposit.Lt(requiredPrefund) {
		missing.Sub(requiredPrefund, deposit)
	}

	// Phase 2: validation. The account pays its prefund to the
	// entrypoint's host balance during the call; credit whatever
	// actually arrived to the sender's deposit. The account reimburses
	// the submission attempt regardless of the signature outcome, so
	// the credit happens before the outcome is inspected.
	before := host.GetBalance(ep.address)
	result, err := acct.ValidateUserOp(host, ep.address, op, opHash, missing)
	if after := host.GetBalance(ep.address); after.Gt(before) {
		ep.AddDeposit(op.Sender, new(uint256.Int).Sub(after, before))
	}
	if err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	if result.SigFailed {
		return nil, ErrValidationFailed
	}

	// Phase 3: charge the full prefund from the deposit.
	if ep.GetDeposit(op.Sender).Lt(requiredPrefund) {
		return nil, ErrInsufficientPrefund
	}
	ep.subDeposit(op.Sender, requiredPrefund)

	// Phase 4: execute the operation's action.
	gasUsed := op.PreVerificationGas + op.VerificationGasLimit
	execSuccess := true
	var execReason string
	var revertData []byte

	if len(op.CallData) > 0 || op.Dest != (common.Address{}) || !safeU256(op.Value).IsZero() {
		execGasUsed := ep.estimateCallGas(op)
		if execGasUsed > op.CallGasLimit {
			execSuccess = false
			execReason = "out of gas during execution"
			// Never charge beyond the user-defined call gas limit.
			execGasUsed = op.CallGasLimit
		} else if err := acct.Execute(host, ep.address, op.Dest, op.Value, op.CallData); err != nil {
			execSuccess = false
			execReason = err.Error()
			var revert *RevertError
			if errors.As(err, &revert) {
				revertData = revert.ReturnData
			}
		}
		gasUsed += execGasUsed
	}

	// Phase 5: actual gas cost, capped at the prefund.
	actualGasCost := new(uint256.Int).Mul(
		new(uint256.Int).SetUint64(gasUsed),
		op.MaxFeePerGas,
	)
	if actualGasCost.Gt(requiredPrefund) {
		actualGasCost.Set(requiredPrefund)
	}

	// Phase 6: refund unused prefund to the sender's deposit.
	refund := new(uint256.Int).Sub(requiredPrefund, actualGasCost)
	if !refund.IsZero() {
		ep.AddDeposit(op.Sender, refund)
	}

	// Phase 7: pay the beneficiary.
	host.AddBalance(beneficiary, actualGasCost)

	return &UserOpReceipt{
		UserOpHash:    opHash,
		Sender:        op.Sender,
		Success:       execSuccess,
		ActualGasCost: actualGasCost,
		ActualGasUsed: gasUsed,
		Reason:        execReason,
		RevertData:    revertData,
	}, nil
}

// estimateCallGas estimates gas for call execution (placeholder).
func (ep *EntryPoint) estimateCallGas(op *UserOperation) uint64 {
	// Base cost: 21000 + 16 per non-zero calldata byte + 4 per zero byte
	gas := uint64(21000)
	for _, b := range op.CallData {
		if b == 0 {
			gas += 4
		} else {
			gas += 16
		}
	}
	return gas
}

// UserOpHash computes the hash of a user operation that the owner's
// signature covers: sender, action, gas limits and fee, packed and
// hashed.
func (ep *EntryPoint) UserOpHash(op *UserOperation) common.Hash {
	if op == nil {
		return common.Hash{}
	}
	packed := make([]byte, 0, 256)
	packed = append(packed, op.Sender.Bytes()...)
	packed = append(packed, op.Dest.Bytes()...)
	packed = append(packed, u256Word(op.Value)...)
	packed = append(packed, crypto.Keccak256(op.CallData)...)
	packed = append(packed, u64Word(op.CallGasLimit)...)
	packed = append(packed, u64Word(op.VerificationGasLimit)...)
	packed = append(packed, u64Word(op.PreVerificationGas)...)
	packed = append(packed, u256Word(op.MaxFeePerGas)...)

	return common.BytesToHash(crypto.Keccak256(packed))
}

func u64Word(v uint64) []byte {
	w := new(uint256.Int).SetUint64(v).Bytes32()
	return w[:]
}

func u256Word(v *uint256.Int) []byte {
	w := safeU256(v).Bytes32()
	return w[:]
}

func safeU256(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
