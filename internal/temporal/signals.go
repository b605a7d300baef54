package temporal

import "partner-crm/internal/domain"

const ReviewDecisionSignalName = "reviewDecision"

type ReviewDecisionSignal struct {
	Decision domain.ReviewDecisionType `json:"decision"`
	Reviewer string                    `json:"reviewer,omitempty"`
	Reason   string                    `json:"reason,omitempty"`
}
