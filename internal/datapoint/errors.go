package datapoint

import "errors"

// Domain-specific errors for data point handling.
var (
	// ErrInvalidDataType is returned when a definition names a type outside the supported set.
	ErrInvalidDataType = errors.New("datapoint: invalid data type")

	// ErrEmptyTopic is returned when a definition has no topic.
	ErrEmptyTopic = errors.New("datapoint: topic cannot be empty")

	// ErrNotRegistered is returned when an identifier has no fully-qualified name.
	ErrNotRegistered = errors.New("datapoint: topic not registered")
)
