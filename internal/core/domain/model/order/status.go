package order

import (
	"fmt"
	"strings"

	"bilbo/internal/pkg/errs"
)

// Status is the workflow state carried by every snapshot.
//
// Sales orders:
//
//	QUOTATION ─> CONFIRMED ─> PREPARING ─> IN_DELIVERY ─> RECEIVED ─> FULFILLED
//	    │            │            │
//	    └────────────┴────────────┴──> CANCELLED
//
// Purchase orders:
//
//	QUOTATION ─> CONFIRMED ─> RECEIVED ─> FULFILLED
//	    │            │
//	    └────────────┴──> CANCELLED
//
// The numeric values are persisted; do not reorder.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Quotation is the initial status of every order.
	Quotation

	// Confirmed means the counterparty accepted the quotation.
	Confirmed

	// Preparing means goods are being picked for a sales order.
	Preparing

	// InDelivery means a sales order has left the warehouse.
	InDelivery

	// Received means the goods reached their destination.
	Received

	// Fulfilled is terminal: the order completed normally.
	Fulfilled

	// Cancelled is terminal: the order was abandoned.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Quotation:  "QUOTATION",
		Confirmed:  "CONFIRMED",
		Preparing:  "PREPARING",
		InDelivery: "IN_DELIVERY",
		Received:   "RECEIVED",
		Fulfilled:  "FULFILLED",
		Cancelled:  "CANCELLED",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Quotation:  "QUOTATION",
		Confirmed:  "CONFIRMED",
		Preparing:  "PREPARING",
		InDelivery: "IN_DELIVERY",
		Received:   "RECEIVED",
		Fulfilled:  "FULFILLED",
		Cancelled:  "CANCELLED",
	}
}

// ParseStatus converts a status name such as "IN_DELIVERY" (case-insensitive).
func ParseStatus(s string) (Status, error) {
	for st, str := range getValidStatusStrings() {
		if strings.EqualFold(str, s) {
			return st, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// ValidateFor checks that the status belongs to the workflow of the given kind.
// PREPARING and IN_DELIVERY, for instance, do not exist for purchase orders.
func (s Status) ValidateFor(kind Kind) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, st := range Statuses(kind) {
		if st == s {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%s is not a valid status for %s orders", s, kind),
	)
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further snapshot may follow this status.
func (s Status) IsTerminal() bool {
	return s == Fulfilled || s == Cancelled
}
