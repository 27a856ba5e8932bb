package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthenticated = errors.New("gate: no authenticated subject")
	ErrForbidden       = errors.New("gate: forbidden")
)
