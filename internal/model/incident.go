package model

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

const DefaultActor = "system"

// IncidentKey is the composite primary key of an incident.
type IncidentKey struct {
	TrackingID string    `json:"trackingId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Incident is one recorded ABEND occurrence and its remediation lifecycle.
type Incident struct {
	TrackingID string    `json:"trackingId"`
	OccurredAt time.Time `json:"occurredAt"`

	JobID           string `json:"jobId,omitempty" validate:"max=128"`
	JobName         string `json:"jobName" validate:"required,max=128"`
	OrderID         string `json:"orderId,omitempty" validate:"max=128"`
	IncidentNumber  string `json:"incidentNumber,omitempty" validate:"max=128"`
	DomainArea      string `json:"domainArea,omitempty" validate:"max=128"`
	AbendType       string `json:"abendType,omitempty" validate:"max=128"`
	AbendStep       string `json:"abendStep,omitempty" validate:"max=128"`
	AbendReturnCode string `json:"abendReturnCode,omitempty" validate:"max=64"`
	AbendReason     string `json:"abendReason,omitempty" validate:"max=2048"`

	Status          Status       `json:"status"`
	Severity        Severity     `json:"severity"`
	VisitedStatuses []Status     `json:"visitedStatuses"`
	Metrics         PhaseMetrics `json:"metrics,omitempty"`

	EmailMetadata         *EmailMetadata         `json:"emailMetadata,omitempty"`
	KnowledgeBaseMetadata *KnowledgeBaseMetadata `json:"knowledgeBaseMetadata,omitempty"`
	RemediationMetadata   *RemediationMetadata   `json:"remediationMetadata,omitempty"`

	LogExtractionRunID   string `json:"logExtractionRunId,omitempty" validate:"max=128"`
	LogExtractionRetries int    `json:"logExtractionRetries" validate:"gte=0"`

	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	CreatedBy  string    `json:"createdBy"`
	UpdatedBy  string    `json:"updatedBy"`
	Generation int64     `json:"generation"`
}

func (i *Incident) Key() IncidentKey {
	return IncidentKey{TrackingID: i.TrackingID, OccurredAt: i.OccurredAt}
}

func (i *Incident) HasVisited(s Status) bool {
	return slices.Contains(i.VisitedStatuses, s)
}

// Clone returns a deep copy so mutators never alias the stored record.
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	c.VisitedStatuses = slices.Clone(i.VisitedStatuses)
	c.Metrics = maps.Clone(i.Metrics)
	if i.EmailMetadata != nil {
		em := *i.EmailMetadata
		em.SentDateTime = clonePtr(i.EmailMetadata.SentDateTime)
		em.ReceivedDateTime = clonePtr(i.EmailMetadata.ReceivedDateTime)
		c.EmailMetadata = &em
	}
	if i.KnowledgeBaseMetadata != nil {
		kb := *i.KnowledgeBaseMetadata
		kb.Files = slices.Clone(i.KnowledgeBaseMetadata.Files)
		c.KnowledgeBaseMetadata = &kb
	}
	if i.RemediationMetadata != nil {
		rm := *i.RemediationMetadata
		rm.ConfidenceScore = clonePtr(i.RemediationMetadata.ConfidenceScore)
		rm.ApprovedAt = clonePtr(i.RemediationMetadata.ApprovedAt)
		c.RemediationMetadata = &rm
	}
	return &c
}

// NormalizeTime truncates to the precision the database stores.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

type Phase string

const (
	PhaseExtraction  Phase = "extraction"
	PhaseAnalysis    Phase = "analysis"
	PhaseRemediation Phase = "remediation"
	PhaseTotal       Phase = "total"
)

var Phases = []Phase{PhaseExtraction, PhaseAnalysis, PhaseRemediation, PhaseTotal}

func (p Phase) Valid() bool {
	return slices.Contains(Phases, p)
}

// PhaseMetrics maps a pipeline phase to how long it took.
// Serialized as milliseconds.
type PhaseMetrics map[Phase]time.Duration

func (m PhaseMetrics) MarshalJSON() ([]byte, error) {
	out := make(map[Phase]int64, len(m))
	for phase, d := range m {
		out[phase] = d.Milliseconds()
	}
	return json.Marshal(out)
}

func (m *PhaseMetrics) UnmarshalJSON(data []byte) error {
	var raw map[Phase]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}
	out := make(PhaseMetrics, len(raw))
	for phase, ms := range raw {
		out[phase] = time.Duration(ms) * time.Millisecond
	}
	*m = out
	return nil
}

type EmailMetadata struct {
	Subject          string     `json:"subject,omitempty" validate:"max=998"`
	From             string     `json:"from,omitempty" validate:"max=320"`
	To               string     `json:"to,omitempty" validate:"max=4096"`
	CC               string     `json:"cc,omitempty" validate:"max=4096"`
	BCC              string     `json:"bcc,omitempty" validate:"max=4096"`
	SentDateTime     *time.Time `json:"sentDateTime,omitempty"`
	ReceivedDateTime *time.Time `json:"receivedDateTime,omitempty"`
	HasAttachments   bool       `json:"hasAttachments"`
	ConversationID   string     `json:"conversationId,omitempty" validate:"max=512"`
	MessageID        string     `json:"messageId,omitempty" validate:"max=512"`
}

type KnowledgeBaseFile struct {
	FileName string `json:"fileName" validate:"required,max=512"`
	FileType string `json:"fileType" validate:"required,max=128"`
	FileSize int64  `json:"fileSize" validate:"gte=0"`
	FileURL  string `json:"fileUrl" validate:"required,url"`
}

type KnowledgeBaseMetadata struct {
	RelevantSOPID string              `json:"relevantSopId,omitempty" validate:"max=128"`
	Files         []KnowledgeBaseFile `json:"files" validate:"dive"`
}

type ApprovalStatus string

const (
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

func (a ApprovalStatus) Valid() bool {
	return a == ApprovalStatusApproved || a == ApprovalStatusRejected
}

type RemediationMetadata struct {
	Explainability   string         `json:"explainability,omitempty"`
	ConfidenceScore  *float64       `json:"confidenceScore,omitempty" validate:"omitempty,gte=0,lte=1"`
	Recommendations  string         `json:"recommendations,omitempty"`
	ApprovalRequired bool           `json:"approvalRequired"`
	ApprovalStatus   ApprovalStatus `json:"approvalStatus,omitempty" validate:"omitempty,oneof=APPROVED REJECTED"`
	ApprovalComments string         `json:"approvalComments,omitempty" validate:"max=4096"`
	ApprovedAt       *time.Time     `json:"approvedAt,omitempty" validate:"required_with=ApprovalStatus"`
	ApprovedBy       string         `json:"approvedBy,omitempty" validate:"required_with=ApprovalStatus,max=256"`
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
