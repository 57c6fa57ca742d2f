// Package kernel provides the value objects shared by every aggregate of the
// booking domain.
//
// The package includes:
//   - UUID: identifier for orders, payments, payouts, earnings, pros and audit rows
//   - Money: an amount in minor units (cents) tagged with an ISO 4217 currency
//   - Hours: a positive decimal number of worked or estimated hours
//   - TimeWindow: the scheduling window of a booking
//
// All values are immutable; their zero values are invalid and are rejected by
// Validate so that persistence and transport layers cannot smuggle them in.
package kernel
