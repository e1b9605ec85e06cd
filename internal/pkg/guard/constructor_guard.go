// Package guard protects domain objects, commands and queries from being used
// as zero values. Every type that must go through a constructor embeds a
// ConstructorGuard and checks it in its Validate method.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller did not supply
// a type-specific error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing value was built by its constructor.
// The zero value is "not constructed".
//
// Example:
//
//	var ErrLineNotConstructed = errors.New("PartLine must be created via NewPartLine")
//
//	type PartLine struct {
//	    quantity int
//	    guard    guard.ConstructorGuard
//	}
//
//	func (l PartLine) Validate() error {
//	    return l.guard.Validate(ErrLineNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when nil) if the
// guarded value was not built by its constructor.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
