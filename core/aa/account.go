// Copyright 2026 The go-obsidian Authors
// This file is part of the obsidian-account library.
//
// Account implements the minimal owner-controlled smart account: the
// entrypoint-gated validation path and the generic call dispatcher.

package aa

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var (
	ErrNotFromEntryPoint        = errors.New("account: caller is not the entrypoint")
	ErrNotFromEntryPointOrOwner = errors.New("account: caller is not the entrypoint or the owner")
)

// RevertError is returned by Execute when the dispatched call fails.
// ReturnData carries the callee's raw revert payload verbatim.
type RevertError struct {
	ReturnData []byte
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("call failed: %s", hexutil.Encode(e.ReturnData))
}

// Account is a smart account controlled by a single owner signature and
// driven by a single trusted entrypoint. The entrypoint binding is
// fixed at construction and never changes for the account's lifetime.
type Account struct {
	address    common.Address
	entryPoint common.Address
	owners     *OwnershipStore
}

// NewAccount creates an account at address, trusting entryPoint as its
// operator and owners as the source of truth for the owner identity.
func NewAccount(address, entryPoint common.Address, owners *OwnershipStore) *Account {
	return &Account{
		address:    address,
		entryPoint: entryPoint,
		owners:     owners,
	}
}

// Address returns the account's own address. The host credits plain
// value transfers to it without any guard, so the account can hold a
// balance.
func (a *Account) Address() common.Address {
	return a.address
}

// EntryPoint returns the trusted entrypoint address.
func (a *Account) EntryPoint() common.Address {
	return a.entryPoint
}

// Owner returns the current owner identity.
func (a *Account) Owner() common.Address {
	return a.owners.Current()
}

// The guards read only the immutable entrypoint binding and the
// externally-owned ownership store, so they stay correct when a
// dispatched call reenters the account mid-operation.

func (a *Account) requireFromEntryPoint(caller common.Address) error {
	if caller != a.entryPoint {
		return ErrNotFromEntryPoint
	}
	return nil
}

func (a *Account) requireFromEntryPointOrOwner(caller common.Address) error {
	if caller != a.entryPoint && caller != a.owners.Current() {
		return ErrNotFromEntryPointOrOwner
	}
	return nil
}

// Execute dispatches a generic (dest, value, payload) call on behalf of
// the account, forwarding the host's full gas budget. Only the
// entrypoint or the owner may call it. A failed call surfaces the
// callee's raw revert data as a RevertError; return data from a
// successful call is discarded.
func (a *Account) Execute(host Host, caller, dest common.Address, value *uint256.Int, payload []byte) error {
	if err := a.requireFromEntryPointOrOwner(caller); err != nil {
		return err
	}
	res := host.Call(a.address, dest, value, payload)
	if !res.Success {
		return &RevertError{ReturnData: res.ReturnData}
	}
	return nil
}

// ValidateUserOp checks that the operation carries a valid owner
// signature over opHash and reimburses the caller for missingFunds.
// Only the entrypoint may call it, which keeps arbitrary parties from
// probing the authorization logic through this path.
//
// The prefund is paid whether or not the signature checked out: the
// relay is reimbursed for the validation attempt itself. No nonce or
// replay tracking is performed; a validly signed operation validates
// every time it is submitted.
func (a *Account) ValidateUserOp(host Host, caller common.Address, op *UserOperation, opHash common.Hash, missingFunds *uint256.Int) (*ValidationResult, error) {
	if err := a.requireFromEntryPoint(caller); err != nil {
		return nil, err
	}
	result := ValidateSignature(opHash, op.Signature, a.owners.Current())
	a.payPrefund(host, caller, missingFunds)
	return result, nil
}

// payPrefund transfers missingFunds from the account to the caller,
// forwarding the full gas budget so the receiving infrastructure can
// run its own accounting on receipt. The transfer result is not
// checked: a failed reimbursement must not abort the enclosing
// validation.
func (a *Account) payPrefund(host Host, caller common.Address, missingFunds *uint256.Int) {
	if missingFunds == nil || missingFunds.IsZero() {
		return
	}
	res := host.Call(a.address, caller, missingFunds, nil)
	if !res.Success {
		log.Warn("Prefund transfer failed", "account", a.address, "to", caller, "amount", missingFunds)
	}
}
