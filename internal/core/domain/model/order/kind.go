package order

import (
	"fmt"
	"strings"

	"bilbo/internal/pkg/errs"
)

// Kind tells sales orders and purchase orders apart. Both share the snapshot
// model but follow different workflows.
type Kind int

const (
	// UnknownKind catches uninitialized Kind values.
	UnknownKind Kind = iota

	// Sales is an order placed by a customer.
	Sales

	// Purchase is an order placed with a supplier.
	Purchase
)

func getKindStrings() map[Kind]string {
	return map[Kind]string{
		Sales:    "SALES",
		Purchase: "PURCHASE",
	}
}

// ParseKind converts "SALES" or "PURCHASE" (case-insensitive) into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, str := range getKindStrings() {
		if strings.EqualFold(str, s) {
			return k, nil
		}
	}
	return UnknownKind, errs.NewValueIsInvalidErrorWithCause("kind is invalid", fmt.Errorf("%q is not a valid kind", s))
}

// Validate rejects UnknownKind and out-of-range values.
func (k Kind) Validate() error {
	if _, ok := getKindStrings()[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("kind is invalid", fmt.Errorf("%d is not a valid kind", k))
	}
	return nil
}

func (k Kind) String() string {
	if str, ok := getKindStrings()[k]; ok {
		return str
	}
	return "UNKNOWN"
}

// Counterpart returns the kind an order of this kind allocates against.
func (k Kind) Counterpart() Kind {
	switch k {
	case Sales:
		return Purchase
	case Purchase:
		return Sales
	default:
		return UnknownKind
	}
}

// NumberPrefix is the human-readable prefix of order numbers of this kind.
func (k Kind) NumberPrefix() string {
	switch k {
	case Sales:
		return "SO"
	case Purchase:
		return "PO"
	default:
		return ""
	}
}

// FormatOrderNumber renders the n-th order number of this kind, e.g. "SO-000042".
func (k Kind) FormatOrderNumber(n int64) string {
	return fmt.Sprintf("%s-%06d", k.NumberPrefix(), n)
}
