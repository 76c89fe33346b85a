// Package repository provides data access to the Mongo collections owned
// by each service. This file defines sentinel error values reused across
// repositories so higher layers such as handlers can distinguish failure
// scenarios without inspecting driver errors: ErrNotFound translates into
// an HTTP 404, while ErrConflict signals a unique-index collision that
// creation paths resolve by re-fetching and returning the existing record.
package repository

import "errors"

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with a unique index,
// such as a duplicate table number or a second bill for the same order.
var ErrConflict = errors.New("conflict")
