package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"partner-crm/internal/domain"
)

type createApplicantRequest struct {
	PartnerID   string                 `json:"partner_id" validate:"required,notblank,max=64"`
	FirstName   string                 `json:"first_name" validate:"required,notblank,max=100"`
	LastName    string                 `json:"last_name" validate:"required,notblank,max=100"`
	Email       string                 `json:"email" validate:"required,email"`
	Phone       string                 `json:"phone" validate:"omitempty,max=32"`
	Nationality string                 `json:"nationality" validate:"omitempty,max=64"`
	ServiceType string                 `json:"service_type" validate:"required"`
	Status      domain.ApplicantStatus `json:"status" validate:"omitempty,applicant_status"`
}

type updateStatusRequest struct {
	Status domain.ApplicantStatus `json:"status" validate:"required,applicant_status"`
}

func (h *Handler) CreateApplicant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req createApplicantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	fields := validateRequest(req)
	if _, ok := h.catalog.RequiredFor(req.ServiceType); req.ServiceType != "" && !ok {
		if fields == nil {
			fields = make(map[string]string)
		}
		fields["service_type"] = "service_type must be one of " + strings.Join(h.catalog.ServiceTypes(), ", ")
	}
	if fields != nil {
		writeValidationError(w, fields)
		return
	}

	status := req.Status
	if status == "" {
		status = domain.ApplicantNew
	}
	created, err := h.store.CreateApplicant(ctx, domain.Applicant{
		ID:          uuid.NewString(),
		PartnerID:   strings.TrimSpace(req.PartnerID),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       req.Email,
		Phone:       req.Phone,
		Nationality: req.Nationality,
		ServiceType: req.ServiceType,
		Status:      status,
	})
	if err != nil {
		h.internalError(w, r, "failed to create applicant", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := domain.ApplicantFilter{PartnerID: r.URL.Query().Get("partner_id")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.ApplicantStatus(strings.TrimSpace(part))
			if !status.Valid() {
				writeValidationError(w, map[string]string{"status": "status must be one of " + joinStatuses()})
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	items, err := h.store.ListApplicants(ctx, filter)
	if err != nil {
		h.internalError(w, r, "failed to list applicants", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) GetApplicant(w http.ResponseWriter, r *http.Request, applicantID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	applicant, err := h.store.GetApplicant(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "applicant not found"})
			return
		}
		h.internalError(w, r, "failed to fetch applicant", err)
		return
	}
	writeJSON(w, http.StatusOK, applicant)
}

// UpdateApplicantStatus is the staff action that moves an applicant's
// backend status. Any of the known statuses may follow any other.
func (h *Handler) UpdateApplicantStatus(w http.ResponseWriter, r *http.Request, applicantID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if fields := validateRequest(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	updated, err := h.store.UpdateApplicantStatus(ctx, applicantID, req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "applicant not found"})
			return
		}
		h.internalError(w, r, "failed to update status", err)
		return
	}
	h.logger.Info("applicant status updated",
		zap.String("applicant_id", applicantID),
		zap.String("status", string(updated.Status)))
	writeJSON(w, http.StatusOK, updated)
}
