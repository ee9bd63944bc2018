package core

import "errors"

// ErrInvalidRole is returned when a message role is not one of
// system, user, or assistant.
var ErrInvalidRole = errors.New("invalid role")

// ErrSessionNotFound is returned by Store.Get for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")
