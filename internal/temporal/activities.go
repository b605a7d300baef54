package temporal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"partner-crm/internal/catalog"
	"partner-crm/internal/domain"
	"partner-crm/internal/metrics"
	"partner-crm/internal/progress"
)

const defaultRejectReason = "rejected by reviewer"

type ActivityStore interface {
	GetApplicant(ctx context.Context, applicantID string) (domain.Applicant, error)
	GetDocument(ctx context.Context, documentID string) (domain.Document, error)
	ListDocuments(ctx context.Context, applicantID string) ([]domain.Document, error)
	QueueReview(ctx context.Context, documentID string) error
	ApplyReviewDecision(ctx context.Context, documentID string, status domain.DocumentStatus, reviewer string, reason *string) error
	InsertAudit(ctx context.Context, applicantID, documentID string, state domain.AuditState, detail any) error
}

type Activities struct {
	Store   ActivityStore
	Catalog *catalog.Catalog
}

type RegisterUploadInput struct {
	DocumentID  string
	ApplicantID string
	ObjectKey   string
}

type RegisterUploadOutput struct {
	DocumentType string
	Status       domain.DocumentStatus
}

type QueueReviewInput struct {
	DocumentID  string
	ApplicantID string
}

type ApplyReviewDecisionInput struct {
	DocumentID  string
	ApplicantID string
	Decision    domain.ReviewDecisionType
	Reviewer    string
	Reason      string
}

type ApplyReviewDecisionOutput struct {
	Status domain.DocumentStatus
}

type RecordProgressInput struct {
	ApplicantID string
	DocumentID  string
}

type RecordProgressOutput struct {
	Resolution progress.Resolution
	Label      string
}

// RegisterUploadActivity checks that the uploaded object belongs to a known
// document of the named applicant and records the upload.
func (a *Activities) RegisterUploadActivity(ctx context.Context, input RegisterUploadInput) (RegisterUploadOutput, error) {
	doc, err := a.Store.GetDocument(ctx, input.DocumentID)
	if errors.Is(err, sql.ErrNoRows) {
		return RegisterUploadOutput{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("document %s not found", input.DocumentID), "DocumentNotFound", err)
	}
	if err != nil {
		return RegisterUploadOutput{}, err
	}
	if doc.ApplicantID != input.ApplicantID {
		return RegisterUploadOutput{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("document %s belongs to applicant %s, not %s", doc.ID, doc.ApplicantID, input.ApplicantID), "ApplicantMismatch", nil)
	}

	if err := a.Store.InsertAudit(ctx, input.ApplicantID, input.DocumentID, domain.AuditStored, map[string]any{
		"object_key":     input.ObjectKey,
		"document_type":  doc.DocumentType,
		"document_label": a.Catalog.Label(doc.DocumentType),
	}); err != nil {
		return RegisterUploadOutput{}, err
	}
	return RegisterUploadOutput{DocumentType: doc.DocumentType, Status: doc.Status}, nil
}

func (a *Activities) QueueReviewActivity(ctx context.Context, input QueueReviewInput) error {
	if err := a.Store.QueueReview(ctx, input.DocumentID); err != nil {
		return err
	}
	return a.Store.InsertAudit(ctx, input.ApplicantID, input.DocumentID, domain.AuditQueued, nil)
}

func (a *Activities) ApplyReviewDecisionActivity(ctx context.Context, input ApplyReviewDecisionInput) (ApplyReviewDecisionOutput, error) {
	status, ok := input.Decision.DocumentStatus()
	if !ok {
		return ApplyReviewDecisionOutput{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("unknown review decision %q", input.Decision), "InvalidDecision", nil)
	}

	var reason *string
	if status == domain.DocumentRejected {
		r := input.Reason
		if r == "" {
			r = defaultRejectReason
		}
		reason = &r
	}

	if err := a.Store.ApplyReviewDecision(ctx, input.DocumentID, status, input.Reviewer, reason); err != nil {
		return ApplyReviewDecisionOutput{}, err
	}
	detail := map[string]any{"reviewer": input.Reviewer}
	if reason != nil {
		detail["reason"] = *reason
	}
	if err := a.Store.InsertAudit(ctx, input.ApplicantID, input.DocumentID, domain.AuditStateFor(status), detail); err != nil {
		return ApplyReviewDecisionOutput{}, err
	}
	metrics.ObserveReview(string(status))
	return ApplyReviewDecisionOutput{Status: status}, nil
}

// RecordProgressActivity resolves the applicant's stage after a review and
// writes it to the audit log. The snapshot is history only; readers always
// resolve the stage again from current data.
func (a *Activities) RecordProgressActivity(ctx context.Context, input RecordProgressInput) (RecordProgressOutput, error) {
	applicant, err := a.Store.GetApplicant(ctx, input.ApplicantID)
	if err != nil {
		return RecordProgressOutput{}, fmt.Errorf("get applicant %s: %w", input.ApplicantID, err)
	}
	documents, err := a.Store.ListDocuments(ctx, input.ApplicantID)
	if err != nil {
		return RecordProgressOutput{}, fmt.Errorf("list documents for %s: %w", input.ApplicantID, err)
	}

	resolution := progress.Explain(applicant.Status, documents, a.Catalog.Categories())
	timeline := progress.BuildTimeline(a.Catalog.StageLabels, resolution.Stage)

	if err := a.Store.InsertAudit(ctx, input.ApplicantID, input.DocumentID, domain.AuditProgress, map[string]any{
		"resolution": resolution,
		"label":      timeline.Label,
	}); err != nil {
		return RecordProgressOutput{}, err
	}
	metrics.ObserveStage(timeline.Label)

	activity.GetLogger(ctx).Info("progress recorded",
		"applicant_id", input.ApplicantID,
		"stage", resolution.Stage,
		"label", timeline.Label)
	return RecordProgressOutput{Resolution: resolution, Label: timeline.Label}, nil
}
