// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import "github.com/solconnect/assistants-gw/pkg/core/api"

// validTransition reports whether a run may move from one observed status
// to the next. Runs only move forward: a terminal status never changes,
// and nothing returns to queued. in_progress and requires_action may
// alternate while tool-call rounds are outstanding.
func validTransition(from, to api.RunStatus) bool {
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	if to == api.RunStatusQueued {
		return false
	}
	switch from {
	case api.RunStatusQueued:
		return true
	case api.RunStatusInProgress:
		return true
	case api.RunStatusRequiresAction:
		return to == api.RunStatusInProgress || to == api.RunStatusCancelling || to.Terminal()
	case api.RunStatusCancelling:
		return to.Terminal()
	}
	return true
}
