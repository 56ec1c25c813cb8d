package model

type Status string

const (
	StatusRegistered                 Status = "Registered"
	StatusExtractionInitiated        Status = "ExtractionInitiated"
	StatusManualInterventionRequired Status = "ManualInterventionRequired"
	StatusUploadedToArchive          Status = "UploadedToArchive"
	StatusPreprocessing              Status = "Preprocessing"
	StatusAnalysisInitiated          Status = "AnalysisInitiated"
	StatusManualAnalysisRequired     Status = "ManualAnalysisRequired"
	StatusRemediationSuggested       Status = "RemediationSuggested"
	StatusRemediationInProgress      Status = "RemediationInProgress"
	StatusPendingApproval            Status = "PendingApproval"
	StatusVerificationInProgress     Status = "VerificationInProgress"
	StatusResolved                   Status = "Resolved"
)

// Statuses lists every lifecycle state in main-line order.
var Statuses = []Status{
	StatusRegistered,
	StatusExtractionInitiated,
	StatusManualInterventionRequired,
	StatusUploadedToArchive,
	StatusPreprocessing,
	StatusAnalysisInitiated,
	StatusManualAnalysisRequired,
	StatusRemediationSuggested,
	StatusRemediationInProgress,
	StatusPendingApproval,
	StatusVerificationInProgress,
	StatusResolved,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", InvalidArgumentf("unknown status %q", raw)
	}
	return s, nil
}

type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

func ParseSeverity(raw string) (Severity, error) {
	s := Severity(raw)
	if !s.Valid() {
		return "", InvalidArgumentf("unknown severity %q", raw)
	}
	return s, nil
}
