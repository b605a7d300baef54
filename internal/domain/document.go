package domain

import "time"

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

type Document struct {
	ID             string         `json:"id"`
	ApplicantID    string         `json:"applicant_id"`
	DocumentType   string         `json:"document_type"`
	Filename       string         `json:"filename"`
	ObjectKey      string         `json:"object_key,omitempty"`
	Status         DocumentStatus `json:"status"`
	RejectedReason *string        `json:"rejected_reason,omitempty"`
	Reviewer       *string        `json:"reviewer,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ReviewQueueItem struct {
	DocumentID   string    `json:"document_id"`
	ApplicantID  string    `json:"applicant_id"`
	DocumentType string    `json:"document_type"`
	Filename     string    `json:"filename"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReviewDecisionType string

const (
	ReviewDecisionApprove ReviewDecisionType = "approve"
	ReviewDecisionReject  ReviewDecisionType = "reject"
)

// DocumentStatus maps a decision onto the status it leaves the document in.
func (d ReviewDecisionType) DocumentStatus() (DocumentStatus, bool) {
	switch d {
	case ReviewDecisionApprove:
		return DocumentApproved, true
	case ReviewDecisionReject:
		return DocumentRejected, true
	default:
		return "", false
	}
}

// ReviewDecision is a staff member's verdict on one document.
type ReviewDecision struct {
	Decision ReviewDecisionType `json:"decision" validate:"required,oneof=approve reject"`
	Reviewer string             `json:"reviewer,omitempty" validate:"omitempty,max=100"`
	Reason   string             `json:"reason,omitempty" validate:"omitempty,max=500"`
}
