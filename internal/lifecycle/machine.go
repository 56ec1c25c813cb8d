// Package lifecycle holds the fixed graph of legal incident status transitions.
package lifecycle

import (
	"adr.app/ledger/internal/model"
)

// Initial is the status every incident is registered with.
const Initial = model.StatusRegistered

var transitions = map[model.Status][]model.Status{
	model.StatusRegistered: {
		model.StatusExtractionInitiated,
		model.StatusManualInterventionRequired,
	},
	model.StatusExtractionInitiated: {
		model.StatusUploadedToArchive,
		model.StatusManualInterventionRequired,
	},
	model.StatusUploadedToArchive: {
		model.StatusPreprocessing,
		model.StatusManualInterventionRequired,
	},
	model.StatusPreprocessing: {
		model.StatusAnalysisInitiated,
		model.StatusManualInterventionRequired,
	},
	model.StatusAnalysisInitiated: {
		model.StatusRemediationSuggested,
		model.StatusManualAnalysisRequired,
		model.StatusManualInterventionRequired,
	},
	model.StatusManualAnalysisRequired: {
		model.StatusAnalysisInitiated,
		model.StatusRemediationSuggested,
		model.StatusManualInterventionRequired,
	},
	model.StatusRemediationSuggested: {
		model.StatusPendingApproval,
		model.StatusRemediationInProgress,
		model.StatusManualInterventionRequired,
	},
	model.StatusPendingApproval: {
		model.StatusRemediationInProgress,
		model.StatusManualInterventionRequired,
	},
	model.StatusRemediationInProgress: {
		model.StatusVerificationInProgress,
		model.StatusManualInterventionRequired,
	},
	model.StatusVerificationInProgress: {
		model.StatusResolved,
		model.StatusManualInterventionRequired,
	},
	model.StatusManualInterventionRequired: {
		model.StatusExtractionInitiated,
		model.StatusUploadedToArchive,
		model.StatusPreprocessing,
		model.StatusAnalysisInitiated,
		model.StatusRemediationInProgress,
		model.StatusVerificationInProgress,
		model.StatusResolved,
	},
	model.StatusResolved: nil,
}

// Validate reports whether moving from one status to another is legal.
// Re-asserting the current status is always legal.
func Validate(from, to model.Status) error {
	if !from.Valid() {
		return model.InvalidArgumentf("unknown status %q", from)
	}
	if !to.Valid() {
		return model.InvalidArgumentf("unknown status %q", to)
	}
	if from == to {
		return nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return &model.InvalidTransitionError{From: from, To: to}
}

// Next returns the statuses reachable in one step, excluding re-assertion.
func Next(from model.Status) []model.Status {
	out := make([]model.Status, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

func IsTerminal(s model.Status) bool {
	return s.Valid() && len(transitions[s]) == 0
}
