// Package order provides the booking aggregate and the lifecycle state machine
// that every client, pro, admin and system action goes through.
//
// The package includes:
//   - Order: the aggregate root holding the booking terms, hours, dispute data and per-transition timestamps
//   - Status: the closed set of lifecycle states
//   - Role and Actor: who is asking for a transition
//   - the role-scoped adjacency table consulted by Order.Transition
//
// Key business rules:
//   - Normal transitions are legal only when the caller's expected status matches the current one
//     and the edge exists for the caller's role
//   - CANCELED, REJECTED and PAID are terminal
//   - Clients may cancel only before work starts; after that only an admin resolving a dispute can
//   - Cancelling an already canceled order is a no-op
//   - Order.Force is a separate admin operation that bypasses the table
//
// Persistence applies the change with a compare-and-swap on (id, status, version), so an
// in-memory Order is never the authority on the current status.
package order
