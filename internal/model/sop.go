package model

import (
	"slices"
	"time"
)

// SOP is a standard operating procedure document registered for a job and abend type.
// Incidents point at one through KnowledgeBaseMetadata.RelevantSOPID.
type SOP struct {
	SOPID                 string    `json:"sopId" validate:"required,max=128"`
	Name                  string    `json:"sopName" validate:"required,max=255"`
	JobName               string    `json:"jobName" validate:"required,max=255"`
	AbendType             string    `json:"abendType" validate:"required,max=100"`
	SourceDocumentURL     string    `json:"sourceDocumentUrl" validate:"required,url,max=2048"`
	ProcessedDocumentURLs []string  `json:"processedDocumentUrls" validate:"max=64,dive,url,max=2048"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
	CreatedBy             string    `json:"createdBy" validate:"max=255"`
	UpdatedBy             string    `json:"updatedBy" validate:"max=255"`
	Generation            int64     `json:"generation"`
}

func (s *SOP) Clone() *SOP {
	if s == nil {
		return nil
	}
	c := *s
	c.ProcessedDocumentURLs = slices.Clone(s.ProcessedDocumentURLs)
	return &c
}

// SOPSummary is the listing view of an SOP.
type SOPSummary struct {
	SOPID     string    `json:"sopId"`
	Name      string    `json:"sopName"`
	JobName   string    `json:"jobName"`
	AbendType string    `json:"abendType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy"`
}

func (s *SOP) Summary() SOPSummary {
	return SOPSummary{
		SOPID:     s.SOPID,
		Name:      s.Name,
		JobName:   s.JobName,
		AbendType: s.AbendType,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		CreatedBy: s.CreatedBy,
	}
}
