package temporal

import (
	"go.temporal.io/sdk/workflow"

	"partner-crm/internal/domain"
)

const DocumentReviewWorkflowName = "DocumentReviewWorkflow"

type WorkflowInput struct {
	DocumentID  string
	ApplicantID string
	ObjectKey   string
}

type WorkflowResult struct {
	DocumentID string
	Status     domain.DocumentStatus
	Stage      int
	StageLabel string
}

// DocumentReviewWorkflow runs one uploaded document through staff review:
// the upload is registered, queued, and held until a reviewDecision signal
// approves or rejects it. The applicant's progress is recorded afterwards.
func DocumentReviewWorkflow(ctx workflow.Context, input WorkflowInput) (WorkflowResult, error) {
	logger := workflow.GetLogger(ctx)

	var registered RegisterUploadOutput
	if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyRegisterUpload), (*Activities).RegisterUploadActivity, RegisterUploadInput{
		DocumentID:  input.DocumentID,
		ApplicantID: input.ApplicantID,
		ObjectKey:   input.ObjectKey,
	}).Get(ctx, &registered); err != nil {
		return WorkflowResult{}, err
	}

	status := registered.Status
	if status == domain.DocumentPending {
		if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyQueueReview), (*Activities).QueueReviewActivity, QueueReviewInput{
			DocumentID:  input.DocumentID,
			ApplicantID: input.ApplicantID,
		}).Get(ctx, nil); err != nil {
			return WorkflowResult{}, err
		}

		signalChan := workflow.GetSignalChannel(ctx, ReviewDecisionSignalName)
		var decision ReviewDecisionSignal
		for {
			signalChan.Receive(ctx, &decision)
			if _, ok := decision.Decision.DocumentStatus(); ok {
				break
			}
			logger.Warn("ignoring unknown review decision", "document_id", input.DocumentID, "decision", decision.Decision)
		}

		var applied ApplyReviewDecisionOutput
		if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyApplyReviewDecision), (*Activities).ApplyReviewDecisionActivity, ApplyReviewDecisionInput{
			DocumentID:  input.DocumentID,
			ApplicantID: input.ApplicantID,
			Decision:    decision.Decision,
			Reviewer:    decision.Reviewer,
			Reason:      decision.Reason,
		}).Get(ctx, &applied); err != nil {
			return WorkflowResult{}, err
		}
		status = applied.Status
	} else {
		logger.Info("document already reviewed", "document_id", input.DocumentID, "status", status)
	}

	var recorded RecordProgressOutput
	if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyRecordProgress), (*Activities).RecordProgressActivity, RecordProgressInput{
		ApplicantID: input.ApplicantID,
		DocumentID:  input.DocumentID,
	}).Get(ctx, &recorded); err != nil {
		return WorkflowResult{}, err
	}

	return WorkflowResult{
		DocumentID: input.DocumentID,
		Status:     status,
		Stage:      recorded.Resolution.Stage,
		StageLabel: recorded.Label,
	}, nil
}
