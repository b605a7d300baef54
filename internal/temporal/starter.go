package temporal

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

// StartDocumentReview starts the review workflow for an uploaded document.
// A workflow that is already running under workflowID is left alone and
// reported as not started.
func StartDocumentReview(ctx context.Context, c client.Client, taskQueue, workflowID string, input WorkflowInput) (bool, error) {
	_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: taskQueue,
	}, DocumentReviewWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return false, nil
		}
		return false, fmt.Errorf("start workflow %s: %w", workflowID, err)
	}
	return true, nil
}
