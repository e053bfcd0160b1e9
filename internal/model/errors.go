package model

import "errors"

var (
	// ErrInvalidConfiguration marks a setup that cannot start a session.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidArgument marks a contract violation by the caller.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO marks a failure writing trial records.
	ErrIO = errors.New("trial log write failed")
)
