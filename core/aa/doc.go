// Copyright 2026 The go-obsidian Authors
// This file is part of the obsidian-account library.

/*
Package aa implements a minimal owner-controlled smart account for
EIP-4337 style Account Abstraction, together with the EntryPoint relay
that drives it.

The account trusts exactly two identities: a single mutable owner, whose
personal-message signature authorizes operations, and an entrypoint
address bound once at construction, which is the only party allowed to
submit operations for validation.

# Architecture

1. Account - the smart account itself. Guards every state-changing
   entry point (entrypoint-only for validation, entrypoint-or-owner for
   execution), validates owner signatures, dispatches arbitrary calls,
   and reimburses the entrypoint for submission costs.

2. OwnershipStore - the single source of truth for the current owner
   identity. Injected into the account so ownership transfer stays
   outside the authorization core.

3. EntryPoint - the trusted relay. Hashes user operations, computes the
   required prefund, asks the account to validate, executes the
   operation's call data on acceptance, and settles gas accounting with
   the beneficiary.

# Operation Flow

	Operator submits UserOperation
	    → EntryPoint.HandleOps:
	        1. Hash the operation
	        2. Compute required prefund and missing funds
	        3. Account.ValidateUserOp (signature check + prefund payment)
	        4. Account.Execute the (dest, value, callData) action
	        5. Charge actual gas cost, pay beneficiary, refund remainder

# Known Gaps

The account performs no nonce or replay tracking: a validly signed
operation is accepted every time it is submitted. The prefund transfer
is likewise fire-and-forget; a failed reimbursement does not abort the
enclosing validation, whereas a failed Execute call always surfaces the
callee's revert data. Both behaviors are deliberate properties of this
minimal account model, not oversights.
*/
package aa
