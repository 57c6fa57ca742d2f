// Package payout models settlement of a professional's earnings.
//
// The package includes:
//   - Earning: the net amount owed to a pro for one captured order
//   - Payout: an aggregated transfer that owns a set of earnings exclusively
//   - Status: CREATED ──> SENT ──> SETTLED, with FAILED reachable from CREATED and SENT
//     and FAILED ──> SENT for a resend
//
// Key business rules:
//   - Payout amount always equals the sum of its earnings' net amounts
//   - An earning is claimed by at most one payout; a failed payout keeps its earnings
//     so a resend reuses them
//   - Provider events are applied at most once per event id
package payout
