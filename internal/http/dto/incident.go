package dto

import (
	"time"

	"adr.app/ledger/internal/model"
)

type RegisterIncidentRequest struct {
	TrackingID string    `json:"trackingId,omitempty" binding:"omitempty,max=200"`
	OccurredAt time.Time `json:"occurredAt" binding:"required"`

	JobID           string `json:"jobId,omitempty" binding:"max=128"`
	JobName         string `json:"jobName" binding:"required,max=128"`
	OrderID         string `json:"orderId,omitempty" binding:"max=128"`
	IncidentNumber  string `json:"incidentNumber,omitempty" binding:"max=128"`
	DomainArea      string `json:"domainArea,omitempty" binding:"max=128"`
	AbendType       string `json:"abendType,omitempty" binding:"max=128"`
	AbendStep       string `json:"abendStep,omitempty" binding:"max=128"`
	AbendReturnCode string `json:"abendReturnCode,omitempty" binding:"max=64"`
	AbendReason     string `json:"abendReason,omitempty" binding:"max=2048"`
	Severity        string `json:"severity,omitempty" binding:"omitempty,oneof=High Medium Low"`

	EmailMetadata         *model.EmailMetadata         `json:"emailMetadata,omitempty"`
	KnowledgeBaseMetadata *model.KnowledgeBaseMetadata `json:"knowledgeBaseMetadata,omitempty"`
	RemediationMetadata   *model.RemediationMetadata   `json:"remediationMetadata,omitempty"`

	LogExtractionRunID string `json:"logExtractionRunId,omitempty" binding:"max=128"`
}

// WriteRequest is shared by every write against an existing incident.
// A nil OccurredAt addresses the latest occurrence of the tracking id.
type WriteRequest struct {
	OccurredAt         *time.Time `json:"occurredAt,omitempty"`
	ExpectedGeneration *int64     `json:"expectedGeneration" binding:"required,gte=0"`
	Detail             string     `json:"detail,omitempty" binding:"max=4096"`
}

type UpdateIncidentRequest struct {
	WriteRequest

	JobID           *string `json:"jobId,omitempty" binding:"omitempty,max=128"`
	OrderID         *string `json:"orderId,omitempty" binding:"omitempty,max=128"`
	IncidentNumber  *string `json:"incidentNumber,omitempty" binding:"omitempty,max=128"`
	DomainArea      *string `json:"domainArea,omitempty" binding:"omitempty,max=128"`
	AbendType       *string `json:"abendType,omitempty" binding:"omitempty,max=128"`
	AbendStep       *string `json:"abendStep,omitempty" binding:"omitempty,max=128"`
	AbendReturnCode *string `json:"abendReturnCode,omitempty" binding:"omitempty,max=64"`
	AbendReason     *string `json:"abendReason,omitempty" binding:"omitempty,max=2048"`
	Severity        *string `json:"severity,omitempty" binding:"omitempty,oneof=High Medium Low"`

	EmailMetadata         *model.EmailMetadata         `json:"emailMetadata,omitempty"`
	KnowledgeBaseMetadata *model.KnowledgeBaseMetadata `json:"knowledgeBaseMetadata,omitempty"`
	RemediationMetadata   *model.RemediationMetadata   `json:"remediationMetadata,omitempty"`

	LogExtractionRunID   *string `json:"logExtractionRunId,omitempty" binding:"omitempty,max=128"`
	LogExtractionRetries *int    `json:"logExtractionRetries,omitempty" binding:"omitempty,gte=0"`
}

type TransitionRequest struct {
	WriteRequest
	Status string `json:"status" binding:"required"`
}

type AllowedTransitions struct {
	TrackingID string         `json:"trackingId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Status     model.Status   `json:"status"`
	Generation int64          `json:"generation"`
	Next       []model.Status `json:"next"`
	Terminal   bool           `json:"terminal"`
}

type PhaseDurationRequest struct {
	WriteRequest
	Phase      string `json:"phase" binding:"required"`
	DurationMS *int64 `json:"durationMs" binding:"required,gte=0"`
}

type ReviewRequest struct {
	WriteRequest
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Comments string `json:"comments,omitempty" binding:"max=4096"`
	Reviewer string `json:"reviewer,omitempty" binding:"max=256"`
}

type NoteRequest struct {
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Level      string     `json:"level,omitempty" binding:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	Detail     string     `json:"detail" binding:"required,max=4096"`
}

type ListIncidentsQuery struct {
	Status       string `form:"status"`
	Severity     string `form:"severity"`
	DomainArea   string `form:"domainArea"`
	JobName      string `form:"jobName"`
	IncidentType string `form:"incidentType"`
	Date         string `form:"date"`
	From         string `form:"from"`
	Through      string `form:"through"`
	Search       string `form:"search" binding:"max=128"`
	Order        string `form:"order" binding:"omitempty,oneof=asc desc"`
	Cursor       string `form:"cursor"`
	Limit        int    `form:"limit" binding:"gte=0"`
}

type ListAuditQuery struct {
	Level  string `form:"level"`
	Action string `form:"action"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"gte=0"`
}

// GetIncidentQuery selects one occurrence; an empty OccurredAt means the latest.
type GetIncidentQuery struct {
	OccurredAt string `form:"occurredAt"`
}

type TrendsQuery struct {
	Days int `form:"days" binding:"gte=0,lte=365"`
}

type StatsQuery struct {
	Date string `form:"date"`
}
