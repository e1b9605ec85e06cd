// Package order models sales and purchase orders as an immutable identity plus an
// append-only history of state snapshots.
//
// The package includes:
//   - Identity: the order's identity record and the latestStatus cache
//   - Snapshot: one immutable, indexed version of an order's status and lines
//   - PartLine and FulfillmentLink: line items and their cross-order allocations
//   - Kind and Status with the workflow that governs legal status changes
//
// Key business rules:
//   - Sales: QUOTATION -> CONFIRMED -> PREPARING -> IN_DELIVERY -> RECEIVED -> FULFILLED
//   - Purchase: QUOTATION -> CONFIRMED -> RECEIVED -> FULFILLED
//   - CANCELLED is reachable from the early statuses of each kind only
//   - FULFILLED and CANCELLED are terminal; nothing is appended after them
//   - Snapshot indices start at 0 and grow by exactly one per append
package order
