package crictl

import "errors"

// Static errors for the crictl package.
var (
	// ErrPullFailed is returned when the verification pull does not succeed
	// within its timeout.
	ErrPullFailed = errors.New("test pull failed")
)
