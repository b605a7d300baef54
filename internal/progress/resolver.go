// Package progress derives an applicant's position on the progress timeline
// from its backend status and the review state of its documents.
package progress

import "partner-crm/internal/domain"

// NoCatalog is returned by DocumentIndex when there are no required
// categories to measure documents against.
const NoCatalog = -1

const (
	StageNew               = 0
	StageDocumentsPending  = 1
	StageDocumentsReceived = 2
	StageUnderReview       = 3
	StageProcessing        = 4
	StageFinalDocuments    = 5
	StageApproved          = 6
	StageRejected          = 7
)

var statusStages = map[domain.ApplicantStatus]int{
	domain.ApplicantNew:         StageNew,
	domain.ApplicantDocsPending: StageDocumentsPending,
	domain.ApplicantProcessing:  StageProcessing,
	domain.ApplicantApproved:    StageApproved,
	domain.ApplicantCompleted:   StageApproved,
	domain.ApplicantRejected:    StageRejected,
}

// Summary holds per-category tallies. The tallies are independent: a
// category with one approved and one rejected upload counts in Uploaded,
// Approved and Rejected.
type Summary struct {
	TotalRequired int `json:"total_required"`
	Uploaded      int `json:"uploaded"`
	Approved      int `json:"approved"`
	Rejected      int `json:"rejected"`
	PendingOnly   int `json:"pending_only"`
}

func (s Summary) ApprovedRatio() float64 {
	if s.TotalRequired == 0 {
		return 0
	}
	return float64(s.Approved) / float64(s.TotalRequired)
}

// Index applies the completeness cascade. The first matching rule wins.
func (s Summary) Index() int {
	if s.TotalRequired == 0 {
		return NoCatalog
	}
	ratio := s.ApprovedRatio()
	switch {
	case s.Approved == s.TotalRequired:
		return StageApproved
	case ratio > 0.9:
		return StageFinalDocuments
	case ratio > 0.5:
		return StageProcessing
	case s.Approved > 0 || s.Rejected > 0:
		return StageUnderReview
	case s.Uploaded == s.TotalRequired:
		return StageDocumentsReceived
	case s.Uploaded > 0 && s.PendingOnly == s.Uploaded:
		return StageDocumentsPending
	default:
		return StageNew
	}
}

// Resolution is the full breakdown behind a resolved stage.
type Resolution struct {
	Status        domain.ApplicantStatus `json:"status"`
	StatusIndex   int                    `json:"status_index"`
	DocumentIndex int                    `json:"document_index"`
	Stage         int                    `json:"stage"`
	Summary       Summary                `json:"summary"`
}

// StatusIndex maps a backend status to its stage. Unrecognized statuses
// map to StageNew.
func StatusIndex(status domain.ApplicantStatus) int {
	return statusStages[status]
}

// Summarize classifies every category against the documents that carry its
// type. Documents whose type is not a category are ignored.
func Summarize(documents []domain.Document, categories []string) Summary {
	byType := make(map[string][]domain.DocumentStatus, len(categories))
	for _, doc := range documents {
		byType[doc.DocumentType] = append(byType[doc.DocumentType], doc.Status)
	}

	s := Summary{TotalRequired: len(categories)}
	for _, category := range categories {
		statuses := byType[category]
		if len(statuses) == 0 {
			continue
		}
		s.Uploaded++

		var approved, rejected bool
		pendingOnly := true
		for _, st := range statuses {
			switch st {
			case domain.DocumentApproved:
				approved = true
			case domain.DocumentRejected:
				rejected = true
			}
			if st != domain.DocumentPending {
				pendingOnly = false
			}
		}
		if approved {
			s.Approved++
		}
		if rejected {
			s.Rejected++
		}
		if pendingOnly {
			s.PendingOnly++
		}
	}
	return s
}

// DocumentIndex derives a stage from document completeness alone, or
// NoCatalog when categories is empty.
func DocumentIndex(documents []domain.Document, categories []string) int {
	if len(categories) == 0 {
		return NoCatalog
	}
	return Summarize(documents, categories).Index()
}

// Resolve returns the displayed stage: the larger of the status and
// document stages, or the status stage alone when there is no catalog.
func Resolve(status domain.ApplicantStatus, documents []domain.Document, categories []string) int {
	return Explain(status, documents, categories).Stage
}

func Explain(status domain.ApplicantStatus, documents []domain.Document, categories []string) Resolution {
	r := Resolution{
		Status:        status,
		StatusIndex:   StatusIndex(status),
		DocumentIndex: NoCatalog,
	}
	if len(categories) > 0 {
		r.Summary = Summarize(documents, categories)
		r.DocumentIndex = r.Summary.Index()
	}
	r.Stage = r.StatusIndex
	if r.DocumentIndex > r.Stage {
		r.Stage = r.DocumentIndex
	}
	return r
}
