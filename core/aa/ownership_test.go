// Copyright 2026 The go-obsidian Authors

package aa

import (
	"testing"
)

func TestOwnershipStore(t *testing.T) {
	_, first := newTestKey(t)
	_, second := newTestKey(t)

	store := NewOwnershipStore(first)
	if store.Current() != first {
		t.Fatal("initial owner mismatch")
	}

	store.SetOwner(second)
	if store.Current() != second {
		t.Fatal("owner not updated")
	}
}
