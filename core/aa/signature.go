// Copyright 2026 The go-obsidian Authors
// This file is part of the obsidian-account library.
//
// Owner signature validation for user operations.

package aa

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ValidateSignature reports whether sig over the personal-message form
// of opHash was produced by owner. The operation hash is first wrapped
// into the "\x19Ethereum Signed Message" digest, because that wrapped
// form is what the owner's wallet actually signs. Malformed signatures
// and invalid recovery ids reject; they never escalate to an error.
//
// The check is read-only. Any state transition implied by an accepted
// outcome happens in the caller, not here.
func ValidateSignature(opHash common.Hash, sig []byte, owner common.Address) *ValidationResult {
	signer, err := recoverSigner(opHash, sig)
	if err != nil {
		return &ValidationResult{SigFailed: true}
	}
	if signer != owner {
		return &ValidationResult{SigFailed: true}
	}
	return &ValidationResult{}
}

// recoverSigner recovers the signing address from a signature over the
// wrapped form of opHash.
func recoverSigner(opHash common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}
	wrapped := accounts.TextHash(opHash.Bytes())

	// Wallets emit the recovery id as 27/28, Ecrecover wants 0/1.
	s := make([]byte, crypto.SignatureLength)
	copy(s, sig)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.Ecrecover(wrapped, s)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(crypto.Keccak256(pubKey[1:])[12:]), nil
}
