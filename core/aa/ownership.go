// Copyright 2026 The go-obsidian Authors
// This file is part of the obsidian-account library.

package aa

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// OwnershipStore holds the single identity authorized to control an
// account. The account reads it on every guard and signature check, so
// an ownership transfer takes effect for the very next operation.
type OwnershipStore struct {
	mu    sync.RWMutex
	owner common.Address
}

// NewOwnershipStore creates a store with the given initial owner.
func NewOwnershipStore(owner common.Address) *OwnershipStore {
	return &OwnershipStore{owner: owner}
}

// Current returns the current owner identity.
func (s *OwnershipStore) Current() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// SetOwner replaces the owner identity.
func (s *OwnershipStore) SetOwner(newOwner common.Address) {
	s.mu.Lock()
	old := s.owner
	s.owner = newOwner
	s.mu.Unlock()
	log.Info("Account owner changed", "old", old, "new", newOwner)
}
