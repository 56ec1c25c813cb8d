package dto

type CreateSOPRequest struct {
	Name                  string   `json:"sopName" binding:"required,max=255"`
	JobName               string   `json:"jobName" binding:"required,max=255"`
	AbendType             string   `json:"abendType" binding:"required,max=100"`
	SourceDocumentURL     string   `json:"sourceDocumentUrl" binding:"required,url,max=2048"`
	ProcessedDocumentURLs []string `json:"processedDocumentUrls,omitempty" binding:"max=64,dive,url"`
}

// UpdateSOPRequest changes only the fields that are present.
type UpdateSOPRequest struct {
	ExpectedGeneration *int64 `json:"expectedGeneration" binding:"required,gte=0"`

	Name                  *string   `json:"sopName,omitempty" binding:"omitempty,max=255"`
	JobName               *string   `json:"jobName,omitempty" binding:"omitempty,max=255"`
	AbendType             *string   `json:"abendType,omitempty" binding:"omitempty,max=100"`
	SourceDocumentURL     *string   `json:"sourceDocumentUrl,omitempty" binding:"omitempty,url,max=2048"`
	ProcessedDocumentURLs *[]string `json:"processedDocumentUrls,omitempty" binding:"omitempty,max=64,dive,url"`
}

type ListSOPsQuery struct {
	JobName   string `form:"jobName"`
	AbendType string `form:"abendType"`
	Search    string `form:"search" binding:"max=128"`
	Cursor    string `form:"cursor"`
	Limit     int    `form:"limit" binding:"gte=0"`
}
