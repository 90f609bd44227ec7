// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"fmt"
	"time"

	"github.com/solconnect/assistants-gw/pkg/core/api"
)

// RunTimeoutError reports a run that did not reach a terminal status
// within the wall-clock budget. The run may still be in flight upstream.
type RunTimeoutError struct {
	RunID  string
	Budget time.Duration
}

func (e *RunTimeoutError) Error() string {
	return fmt.Sprintf("run %s did not finish within %s", e.RunID, e.Budget)
}

// RunFailedError reports a run that reached a terminal status other than
// completed.
type RunFailedError struct {
	RunID     string
	Status    api.RunStatus
	LastError *api.RunError
}

func (e *RunFailedError) Error() string {
	if e.LastError != nil {
		return fmt.Sprintf("run %s ended %s: %s (%s)", e.RunID, e.Status, e.LastError.Message, e.LastError.Code)
	}
	return fmt.Sprintf("run %s ended %s", e.RunID, e.Status)
}
