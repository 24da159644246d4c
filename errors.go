// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import "fmt"

// GatewayError is an error type carrying gateway specific information. The
// Number identifies the failure class; callers branch on it rather than on
// message text.
type GatewayError struct {
	Number       int
	JobID        string
	ConnectionID string
	Message      string
	MessageArgs  []interface{}
}

func (ge *GatewayError) Error() string {
	message := ge.Message
	if len(ge.MessageArgs) > 0 {
		message = fmt.Sprintf(ge.Message, ge.MessageArgs...)
	}
	if ge.JobID != "" {
		return fmt.Sprintf("%06d: job %v: %s", ge.Number, ge.JobID, message)
	}
	return fmt.Sprintf("%06d: %s", ge.Number, message)
}

const (
	// submission

	// ErrCodeUnknownConnection is returned when a submission references a
	// connection id the resolver cannot find. Not retryable.
	ErrCodeUnknownConnection = 370001
	// ErrCodeEmptyQueryText is returned when a request carries no query text.
	ErrCodeEmptyQueryText = 370002
	// ErrCodeRejected is returned when the backend refused to create the
	// job. Not retryable without changing the request.
	ErrCodeRejected = 370003

	// transport

	// ErrCodeUnavailable is returned on a transport failure or backend 5xx.
	// Retryable by the caller with backoff.
	ErrCodeUnavailable = 370100

	// execution

	// ErrCodeGuardrailTriggered is returned when a backend safety limit
	// aborted the query. The Message carries the backend detail verbatim.
	ErrCodeGuardrailTriggered = 370200
	// ErrCodeQueryFailed is returned when the backend reports a FAILED
	// terminal state.
	ErrCodeQueryFailed = 370201
	// ErrCodeCancelled is returned when the job reached CANCELLED, either by
	// caller request or backend initiated.
	ErrCodeCancelled = 370202
	// ErrCodeTimeout is returned when RunToCompletion exceeded its deadline.
	// A best-effort cancel is issued before this error is returned.
	ErrCodeTimeout = 370203
	// ErrCodeUnexpectedResponse is returned when the backend payload cannot
	// be decoded.
	ErrCodeUnexpectedResponse = 370204
)

const (
	errMsgUnknownConnection = "connection id not found: %v"
	errMsgRejected          = "backend rejected job creation: %v"
	errMsgUnavailable       = "backend unavailable: %v"
	errMsgQueryFailed       = "query failed: %v"
)

var (
	// preformatted errors

	// ErrEmptyQueryText is returned if a request carries no query text.
	ErrEmptyQueryText = &GatewayError{
		Number:  ErrCodeEmptyQueryText,
		Message: "query text is empty",
	}
	// ErrQueryCancelled is returned if the job reached the CANCELLED state.
	ErrQueryCancelled = &GatewayError{
		Number:  ErrCodeCancelled,
		Message: "query was cancelled",
	}
	// ErrRunDeadlineExceeded is returned if RunToCompletion gave up waiting.
	ErrRunDeadlineExceeded = &GatewayError{
		Number:  ErrCodeTimeout,
		Message: "deadline exceeded while waiting for query completion",
	}
)
