// Package site models storage sites and the StorageLedger each one owns.
//
// The ledger is the principal shared mutable resource of the system. Its
// invariant, 0 <= current quantity <= capacity, holds after every mutation:
// Replenish clamps relative increments, ApplySensorReading clamps absolute
// sets. Callers serialize mutations per site (see ports.Locker) and persist
// with an optimistic version check.
package site
