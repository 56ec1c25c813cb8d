package lifecycle

import (
	"strings"
	"time"

	"adr.app/ledger/internal/model"
)

// A phase's duration can only be recorded after one of its gate statuses was entered.
var phaseGates = map[model.Phase][]model.Status{
	model.PhaseExtraction:  {model.StatusUploadedToArchive},
	model.PhaseAnalysis:    {model.StatusRemediationSuggested, model.StatusManualAnalysisRequired},
	model.PhaseRemediation: {model.StatusVerificationInProgress},
	model.PhaseTotal:       {model.StatusResolved},
}

// ValidateMetrics checks that next only adds phases, each at most once, each past its gate.
func ValidateMetrics(prev, next *model.Incident) error {
	for phase, prevDuration := range prev.Metrics {
		d, ok := next.Metrics[phase]
		if !ok {
			return model.InvalidArgumentf("phase %s duration cannot be removed", phase)
		}
		if d != prevDuration {
			return model.InvalidArgumentf("phase %s duration already recorded", phase)
		}
	}

	for phase, d := range next.Metrics {
		if _, ok := prev.Metrics[phase]; ok {
			continue
		}
		if !phase.Valid() {
			return model.InvalidArgumentf("unknown phase %q", phase)
		}
		if d < 0 {
			return model.InvalidArgumentf("phase %s has negative duration", phase)
		}
		// Durations are persisted in whole milliseconds.
		if d%time.Millisecond != 0 {
			return model.InvalidArgumentf("phase %s duration %s is not whole milliseconds", phase, d)
		}
		if !gateReached(next, phase) {
			return model.InvalidArgumentf("phase %s cannot be recorded before status %s", phase, gateList(phase))
		}
	}
	return nil
}

func gateReached(i *model.Incident, p model.Phase) bool {
	for _, s := range phaseGates[p] {
		if i.HasVisited(s) {
			return true
		}
	}
	return false
}

func gateList(p model.Phase) string {
	names := make([]string, 0, len(phaseGates[p]))
	for _, s := range phaseGates[p] {
		names = append(names, string(s))
	}
	return strings.Join(names, " or ")
}
