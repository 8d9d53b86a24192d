package models

import "time"

const (
	CallOutcomeStarted = "started"
	CallOutcomeFailed  = "failed"
)

// CallRecord is one startVapiCall attempt, kept for auditing
type CallRecord struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	WorkflowID     string    `gorm:"not null;index" json:"workflowId"`
	UserID         string    `gorm:"index" json:"userId"`
	ProviderCallID string    `json:"providerCallId,omitempty"`
	Outcome        string    `gorm:"not null" json:"outcome"`
	UpstreamStatus int       `json:"upstreamStatus"`
	CreatedAt      time.Time `gorm:"not null;index" json:"createdAt"`
}
