// Package errs holds the validation and lookup errors shared by every layer.
//
// Each kind of failure is a sentinel (ErrObjectNotFound, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrValueIsRequired) plus a struct carrying the details.
// The structs unwrap to their sentinel, so callers branch with errors.Is and
// read the details with errors.As:
//
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return c.JSON(http.StatusNotFound, ...)
//	}
//
// Domain constructors join the errors of all their setters, so one call can
// report several invalid fields at once.
package errs
