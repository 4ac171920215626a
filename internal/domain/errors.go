// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict.
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates the request failed a precondition check.
// Wrap it with the human-readable detail: fmt.Errorf("%w: %s", ErrValidation, msg).
var ErrValidation = errors.New("validation failed")

// ErrNoCredits indicates the office has no petition credits left.
var ErrNoCredits = errors.New("no petition credits available")
