// Package models defines the core domain models for piggy bank payment groups.
//
// # Aggregate
//
// A payment group exclusively owns its members, invitations, contributions and
// termination votes. The engine loads all of them together as a GroupState,
// mutates a clone, and saves the clone as one unit so a failed operation never
// leaves partial state behind.
//
// # Derived values
//
// Neither the group balance nor a member's total contribution is stored. Both are
// computed from the contribution rows at read time (see package ledger), so they
// cannot drift from the ledger.
//
// # Identifiers
//
// Relationships use ID strings instead of pointers. Members reference accounts by
// UserRef, the identity provider's user ID.
package models
