// Package payment models the local view of a payment held and captured at the
// external gateway.
//
// A Payment mirrors the provider's own state machine:
//
//	CREATED ──> REQUIRES_ACTION ──> AUTHORIZED ──> CAPTURED ──> REFUNDED
//	   │              │                 │
//	   └──────────────┴─────────────────┴──> FAILED | CANCELLED
//
// Amounts always satisfy captured ≤ authorized ≤ estimated, where estimated is
// already rounded up to a whole cent. Provider events are applied at most once,
// keyed by the provider event id, and an event that would move the status
// backwards is recorded without changing anything.
package payment
