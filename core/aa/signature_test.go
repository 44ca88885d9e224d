// Copyright 2026 The go-obsidian Authors

package aa

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// signOver signs the personal-message form of opHash, the way an owner
// wallet would.
func signOver(t *testing.T, key *ecdsa.PrivateKey, opHash common.Hash) []byte {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash(opHash.Bytes()), key)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}
	return sig
}

func newTestKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

func TestValidateSignatureAccepted(t *testing.T) {
	key, owner := newTestKey(t)
	opHash := crypto.Keccak256Hash([]byte("operation"))

	sig := signOver(t, key, opHash)
	if res := ValidateSignature(opHash, sig, owner); res.SigFailed {
		t.Fatal("expected owner signature to be accepted")
	}
}

func TestValidateSignatureWrongOwner(t *testing.T) {
	key, _ := newTestKey(t)
	_, other := newTestKey(t)
	opHash := crypto.Keccak256Hash([]byte("operation"))

	sig := signOver(t, key, opHash)
	if res := ValidateSignature(opHash, sig, other); !res.SigFailed {
		t.Fatal("expected rejection for non-owner signature")
	}
}

func TestValidateSignatureLegacyRecoveryID(t *testing.T) {
	key, owner := newTestKey(t)
	opHash := crypto.Keccak256Hash([]byte("operation"))

	// Wallet-style encoding with V = 27/28.
	sig := signOver(t, key, opHash)
	sig[crypto.RecoveryIDOffset] += 27

	if res := ValidateSignature(opHash, sig, owner); res.SigFailed {
		t.Fatal("expected legacy recovery id encoding to be accepted")
	}
}

func TestValidateSignatureMalformed(t *testing.T) {
	key, owner := newTestKey(t)
	opHash := crypto.Keccak256Hash([]byte("operation"))
	valid := signOver(t, key, opHash)

	badRecovery := make([]byte, len(valid))
	copy(badRecovery, valid)
	badRecovery[crypto.RecoveryIDOffset] = 9

	cases := map[string][]byte{
		"empty":           nil,
		"too short":       valid[:64],
		"too long":        append(append([]byte{}, valid...), 0x00),
		"all zero":        make([]byte, crypto.SignatureLength),
		"bad recovery id": badRecovery,
	}
	for name, sig := range cases {
		if res := ValidateSignature(opHash, sig, owner); !res.SigFailed {
			t.Errorf("%s: expected rejection", name)
		}
	}
}

func TestValidateSignatureDeterministic(t *testing.T) {
	key, owner := newTestKey(t)
	opHash := crypto.Keccak256Hash([]byte("operation"))
	sig := signOver(t, key, opHash)

	first := ValidateSignature(opHash, sig, owner)
	second := ValidateSignature(opHash, sig, owner)
	if first.SigFailed != second.SigFailed {
		t.Fatal("validation outcome changed between identical calls")
	}
}

func TestValidationResultPacked(t *testing.T) {
	ok := &ValidationResult{}
	if !ok.Packed().IsZero() {
		t.Error("unrestricted acceptance should pack to zero")
	}

	failed := &ValidationResult{SigFailed: true}
	if failed.Packed().Cmp(uint256.NewInt(1)) != 0 {
		t.Error("rejection should pack to one")
	}

	windowed := &ValidationResult{ValidAfter: 5, ValidUntil: 100}
	want := new(uint256.Int).Lsh(uint256.NewInt(100), 160)
	want.Or(want, new(uint256.Int).Lsh(uint256.NewInt(5), 208))
	if windowed.Packed().Cmp(want) != 0 {
		t.Errorf("packed window mismatch: got %s, want %s", windowed.Packed(), want)
	}
}
