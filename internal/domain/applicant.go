package domain

import "time"

type ApplicantStatus string

const (
	ApplicantNew         ApplicantStatus = "new"
	ApplicantDocsPending ApplicantStatus = "docs_pending"
	ApplicantProcessing  ApplicantStatus = "processing"
	ApplicantApproved    ApplicantStatus = "approved"
	ApplicantRejected    ApplicantStatus = "rejected"
	ApplicantCompleted   ApplicantStatus = "completed"
)

var applicantStatuses = []ApplicantStatus{
	ApplicantNew,
	ApplicantDocsPending,
	ApplicantProcessing,
	ApplicantApproved,
	ApplicantRejected,
	ApplicantCompleted,
}

// ApplicantStatuses returns the recognized statuses in lifecycle order.
func ApplicantStatuses() []ApplicantStatus {
	return append([]ApplicantStatus(nil), applicantStatuses...)
}

func (s ApplicantStatus) Valid() bool {
	for _, known := range applicantStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Applicant struct {
	ID          string          `json:"id"`
	PartnerID   string          `json:"partner_id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone,omitempty"`
	Nationality string          `json:"nationality,omitempty"`
	ServiceType string          `json:"service_type"`
	Status      ApplicantStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ApplicantFilter struct {
	PartnerID string
	Statuses  []ApplicantStatus
}
