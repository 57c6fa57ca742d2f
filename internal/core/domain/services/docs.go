// Package services provides domain services that work across several aggregates
// of the booking system.
//
// The package includes:
//   - ChatGate: decides whether an order's chat channel accepts new messages
//   - EarningCalculator: turns a captured payment into the pro's Earning
//   - PayoutAssembler: groups a pro's unclaimed earnings into a Payout
//   - CheckOrderHistory: verifies an audit trail follows the transition graph
//
// Domain services hold no state between calls and never cache order status.
package services
