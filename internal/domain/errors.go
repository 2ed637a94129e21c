package domain

import "errors"

var (
	// ErrInvalidURL is returned when the submitted URL is not an Instagram post URL
	ErrInvalidURL = errors.New("please enter a valid Instagram URL")

	// ErrSubmissionInFlight is returned when a submission is already loading
	ErrSubmissionInFlight = errors.New("a submission is already in progress")

	// ErrSessionClosed is returned when a torn-down session receives a submission
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionNotFound is returned when no session exists for an ID
	ErrSessionNotFound = errors.New("session not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrTransport is returned when the analysis service could not be reached
	ErrTransport = errors.New("analysis service unreachable")

	// ErrProtocol is returned when the analysis service answers with a non-2xx status
	ErrProtocol = errors.New("analysis service returned an error status")

	// ErrContract is returned when a 2xx response does not carry the expected fields
	ErrContract = errors.New("analysis service response violates contract")
)
