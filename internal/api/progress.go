package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"partner-crm/internal/domain"
	"partner-crm/internal/metrics"
	"partner-crm/internal/progress"
)

type progressResponse struct {
	ApplicantID string              `json:"applicant_id"`
	Resolution  progress.Resolution `json:"resolution"`
	Timeline    progress.Timeline   `json:"timeline"`
}

type checklistResponse struct {
	ApplicantID  string             `json:"applicant_id"`
	ServiceType  string             `json:"service_type"`
	KnownService bool               `json:"known_service"`
	Complete     bool               `json:"complete"`
	Checklist    progress.Checklist `json:"checklist"`
}

// loadApplicantDocuments reads the applicant and its documents concurrently.
// The two reads are not taken in one transaction.
func (h *Handler) loadApplicantDocuments(ctx context.Context, applicantID string) (domain.Applicant, []domain.Document, error) {
	var (
		applicant domain.Applicant
		documents []domain.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		applicant, err = h.store.GetApplicant(gctx, applicantID)
		return err
	})
	g.Go(func() error {
		var err error
		documents, err = h.store.ListDocuments(gctx, applicantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Applicant{}, nil, err
	}
	return applicant, documents, nil
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request, applicantID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	applicant, documents, err := h.loadApplicantDocuments(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "applicant not found"})
			return
		}
		h.internalError(w, r, "failed to fetch progress", err)
		return
	}

	resolution := progress.Explain(applicant.Status, documents, h.catalog.Categories())
	timeline := progress.BuildTimeline(h.catalog.StageLabels, resolution.Stage)
	metrics.ObserveStage(timeline.Label)

	writeJSON(w, http.StatusOK, progressResponse{
		ApplicantID: applicant.ID,
		Resolution:  resolution,
		Timeline:    timeline,
	})
}

func (h *Handler) GetChecklist(w http.ResponseWriter, r *http.Request, applicantID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	applicant, documents, err := h.loadApplicantDocuments(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "applicant not found"})
			return
		}
		h.internalError(w, r, "failed to fetch checklist", err)
		return
	}

	required, known := h.catalog.RequiredFor(applicant.ServiceType)
	checklist := progress.BuildChecklist(required, documents)
	writeJSON(w, http.StatusOK, checklistResponse{
		ApplicantID:  applicant.ID,
		ServiceType:  applicant.ServiceType,
		KnownService: known,
		Complete:     checklist.Complete(),
		Checklist:    checklist,
	})
}
