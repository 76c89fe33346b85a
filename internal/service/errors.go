// Package service implements the business rules of the platform: the
// order lifecycle, bill derivation, table assignment and the
// cross-service consistency checks. Handlers stay thin and delegate
// here; storage access goes through small store interfaces so the rules
// are testable without a database.
package service

import "errors"

// ErrPrecondition is returned when an operation is well formed but the
// referenced state does not allow it yet, e.g. generating a bill from an
// order that is not completed. Handlers translate it into HTTP 400.
var ErrPrecondition = errors.New("precondition not met")
