// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"errors"
	"fmt"
)

// RemoteErrorKind categorizes remote engine failures for logging and
// metrics. The facade treats every kind the same way: fall back.
type RemoteErrorKind int

const (
	// RemoteErrorTransport indicates the request never got a response.
	RemoteErrorTransport RemoteErrorKind = iota

	// RemoteErrorTimeout indicates the bounded call deadline expired.
	RemoteErrorTimeout

	// RemoteErrorCancelled indicates the caller cancelled the context.
	RemoteErrorCancelled

	// RemoteErrorStatus indicates a non-success HTTP status.
	RemoteErrorStatus

	// RemoteErrorMalformed indicates an unparsable or incomplete payload.
	RemoteErrorMalformed

	// RemoteErrorRejected indicates the remote explicitly reported failure
	// (success=false, or a health status other than "healthy").
	RemoteErrorRejected
)

// String returns the kind as a metric-friendly label.
func (k RemoteErrorKind) String() string {
	switch k {
	case RemoteErrorTransport:
		return "TRANSPORT"
	case RemoteErrorTimeout:
		return "TIMEOUT"
	case RemoteErrorCancelled:
		return "CANCELLED"
	case RemoteErrorStatus:
		return "STATUS"
	case RemoteErrorMalformed:
		return "MALFORMED"
	case RemoteErrorRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// RemoteError provides structured information about a failed remote call.
type RemoteError struct {
	// Kind categorizes the failure.
	Kind RemoteErrorKind

	// Op is the remote operation: "health", "transform" or "sample".
	Op string

	// StatusCode is the HTTP status for RemoteErrorStatus, else 0.
	StatusCode int

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("remote %s: %s", e.Op, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// isCallerCancellation reports a remote call abandoned by its caller.
func isCallerCancellation(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.Kind == RemoteErrorCancelled
}

// failureReason maps an error to the label used in fallback metrics.
func failureReason(err error) string {
	var remoteErr *RemoteError
	switch {
	case errors.As(err, &remoteErr):
		return remoteErr.Kind.String()
	case errors.Is(err, ErrCircuitOpen):
		return "CIRCUIT_OPEN"
	default:
		return "UNKNOWN"
	}
}
