// Package repository defines error types that are reused across the
// registration repository.  These sentinel values allow higher layers such
// as services and handlers to distinguish failure scenarios.
package repository

import "errors"

// ErrDuplicateDNI is returned when a legacy registration is created for a
// national id that already holds a ticket.  Handlers translate it into an
// HTTP 409 response.
var ErrDuplicateDNI = errors.New("registration already exists for this dni")

// ErrConflict is returned when a create would overwrite an existing record.
var ErrConflict = errors.New("conflict")
