// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError indicates a network-level failure before any upstream
// response was received. The client never retries; retry policy lives in
// the orchestrator.
type TransportError struct {
	Op  string // upstream operation, e.g. "create_run"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError is a non-2xx response from the assistants API.
type UpstreamError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error during %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// IsAuth reports whether the error is a credential problem. Callers use
// this to trigger re-resolution of the tenant's API key.
func (e *UpstreamError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsUpstreamStatus reports whether err is an UpstreamError with the given
// status code.
func IsUpstreamStatus(err error, status int) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == status
}
