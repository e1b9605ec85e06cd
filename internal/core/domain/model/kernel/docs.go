// Package kernel holds the primitives shared by every aggregate of the order
// management domain.
//
// The package includes:
//   - UUID: an immutable identifier for orders, parts, counterparties and actors
//
// The zero value of every kernel type is invalid; values must be built through
// their constructors and checked with Validate when they cross a boundary.
package kernel
