// Package services provides domain services that enforce rules spanning more
// than one order aggregate.
//
// The package includes:
//   - FulfillmentLedger: conservation checks for fulfillment links between sales
//     and purchase order lines, both for a single append and for a full audit
package services
