package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.uber.org/zap"

	"partner-crm/internal/domain"
	appTemporal "partner-crm/internal/temporal"
)

func (h *Handler) PendingReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.store.ListPendingReviews(ctx)
	if err != nil {
		h.internalError(w, r, "failed to fetch pending reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// SubmitReview forwards a staff decision to the document's running review
// workflow. It never starts a workflow.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request, documentID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.ReviewDecision
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if fields := validateRequest(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	doc, err := h.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "document not found"})
			return
		}
		h.internalError(w, r, "failed to fetch document", err)
		return
	}
	if doc.Status != domain.DocumentPending {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "document already reviewed", "status": doc.Status})
		return
	}

	signal := appTemporal.ReviewDecisionSignal{
		Decision: req.Decision,
		Reviewer: req.Reviewer,
		Reason:   req.Reason,
	}
	if err := h.temporalClient.SignalWorkflow(ctx, h.cfg.WorkflowID(documentID), "", appTemporal.ReviewDecisionSignalName, signal); err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "no review in progress for document"})
			return
		}
		h.internalError(w, r, "failed to signal workflow", err)
		return
	}

	h.logger.Info("review decision sent",
		zap.String("document_id", documentID),
		zap.String("decision", string(req.Decision)),
		zap.String("reviewer", req.Reviewer))
	writeJSON(w, http.StatusAccepted, map[string]any{"document_id": documentID, "status": "review_signal_sent"})
}
