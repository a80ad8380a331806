package spec

import "errors"

// ErrNotFound is returned when a named component or channel does not exist.
var ErrNotFound = errors.New("not found")

// ErrLengthMismatch is returned when a per-component sequence does not match the component count.
var ErrLengthMismatch = errors.New("length mismatch")

// ErrUnknownMessage is returned by NewMessage for names without a record type.
var ErrUnknownMessage = errors.New("unknown message")
