package progress

import "partner-crm/internal/domain"

type ChecklistState string

const (
	ChecklistMissing  ChecklistState = "missing"
	ChecklistPending  ChecklistState = "pending"
	ChecklistApproved ChecklistState = "approved"
	ChecklistRejected ChecklistState = "rejected"
)

type ChecklistItem struct {
	DocumentType string         `json:"document_type"`
	State        ChecklistState `json:"state"`
	Uploads      int            `json:"uploads"`
}

type Checklist struct {
	Items    []ChecklistItem `json:"items"`
	Approved int             `json:"approved"`
	Total    int             `json:"total"`
}

func (c Checklist) Complete() bool {
	return c.Total > 0 && c.Approved == c.Total
}

// BuildChecklist reports each required type of a service against the
// uploaded documents. An approved upload wins over a rejected one, which
// wins over a pending one.
//
// This list is scoped to the applicant's service and is not
// the one Resolve measures against; Resolve uses the whole catalog.
func BuildChecklist(required []string, documents []domain.Document) Checklist {
	c := Checklist{Items: make([]ChecklistItem, 0, len(required)), Total: len(required)}
	for _, docType := range required {
		item := ChecklistItem{DocumentType: docType, State: ChecklistMissing}
		for _, doc := range documents {
			if doc.DocumentType != docType {
				continue
			}
			item.Uploads++
			item.State = higherState(item.State, doc.Status)
		}
		if item.State == ChecklistApproved {
			c.Approved++
		}
		c.Items = append(c.Items, item)
	}
	return c
}

var checklistRank = map[ChecklistState]int{
	ChecklistMissing:  0,
	ChecklistPending:  1,
	ChecklistRejected: 2,
	ChecklistApproved: 3,
}

func higherState(current ChecklistState, status domain.DocumentStatus) ChecklistState {
	next := ChecklistPending
	switch status {
	case domain.DocumentApproved:
		next = ChecklistApproved
	case domain.DocumentRejected:
		next = ChecklistRejected
	}
	if checklistRank[next] > checklistRank[current] {
		return next
	}
	return current
}
