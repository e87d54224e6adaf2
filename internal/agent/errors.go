package agent

import "errors"

// Domain-specific errors returned by Run.
var (
	// ErrServerUnavailable is returned when the server never answered within MaxRetries.
	ErrServerUnavailable = errors.New("agent: remote server unavailable")

	// ErrNothingToDo is returned when registration accepted no data points.
	// The process should exit successfully.
	ErrNothingToDo = errors.New("agent: no data points registered")

	// ErrProvisioningTimeout is returned when a provisioning retry cap is set and exhausted.
	ErrProvisioningTimeout = errors.New("agent: provisioning not completed")

	// ErrInitialRead is returned when the initial read fails or returns nothing.
	ErrInitialRead = errors.New("agent: initial read failed")

	// ErrSample is the cause of a failed metrics sample.
	ErrSample = errors.New("agent: metrics sample failed")
)
