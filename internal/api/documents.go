package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"partner-crm/internal/domain"
	"partner-crm/internal/storage"
)

func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request, applicantID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if _, err := h.store.GetApplicant(ctx, applicantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "applicant not found"})
			return
		}
		h.internalError(w, r, "failed to fetch applicant", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.AllowedUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.cfg.AllowedUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid multipart payload"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	documentType := strings.TrimSpace(r.FormValue("document_type"))
	if !h.catalog.HasDocumentType(documentType) {
		writeValidationError(w, map[string]string{"document_type": fmt.Sprintf("unknown document type %q", documentType)})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "file form field is required"})
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, h.cfg.AllowedUploadBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "failed to read file"})
		return
	}
	if int64(len(body)) > h.cfg.AllowedUploadBytes {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "file exceeds size limit"})
		return
	}
	contentType, ok := sniffDocument(body)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "file must be a PDF, JPEG or PNG"})
		return
	}

	doc, err := h.store.CreateDocument(ctx, domain.Document{
		ID:           uuid.NewString(),
		ApplicantID:  applicantID,
		DocumentType: documentType,
		Filename:     path.Base(header.Filename),
	})
	if err != nil {
		h.internalError(w, r, "failed to create document", err)
		return
	}

	// The object-created notification starts the review workflow; the
	// upload only has to land the bytes.
	objectKey, err := h.blob.PutDocument(ctx, applicantID, doc.ID, doc.Filename, contentType, body)
	if err != nil {
		h.discardDocument(r.Context(), doc.ID)
		h.internalError(w, r, "failed to upload file", err)
		return
	}
	if err := h.store.SetDocumentObjectKey(ctx, doc.ID, objectKey); err != nil {
		h.discardDocument(r.Context(), doc.ID)
		h.internalError(w, r, "failed to record upload", err)
		return
	}

	h.logger.Info("document uploaded",
		zap.String("applicant_id", applicantID),
		zap.String("document_id", doc.ID),
		zap.String("document_type", documentType),
		zap.Int("bytes", len(body)))

	writeJSON(w, http.StatusAccepted, map[string]any{
		"document_id": doc.ID,
		"workflow_id": h.cfg.WorkflowID(doc.ID),
		"status":      doc.Status,
	})
}

// discardDocument removes the row of an upload that did not complete, so it
// is neither counted as uploaded nor left waiting for a review that never
// starts. It runs even when the request context is already done.
func (h *Handler) discardDocument(parent context.Context, documentID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 5*time.Second)
	defer cancel()
	if err := h.store.DeleteDocument(ctx, documentID); err != nil {
		h.logger.Error("failed to discard incomplete upload",
			zap.String("document_id", documentID),
			zap.Error(err))
	}
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request, applicantID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.store.GetApplicant(ctx, applicantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "applicant not found"})
			return
		}
		h.internalError(w, r, "failed to fetch applicant", err)
		return
	}
	docs, err := h.store.ListDocuments(ctx, applicantID)
	if err != nil {
		h.internalError(w, r, "failed to list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": docs})
}

func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request, documentID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	doc, err := h.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "document not found"})
			return
		}
		h.internalError(w, r, "failed to fetch document", err)
		return
	}
	if doc.ObjectKey == "" {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "document has no stored file"})
		return
	}

	body, err := h.blob.GetDocument(ctx, doc.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "stored file not found"})
			return
		}
		h.internalError(w, r, "failed to read file", err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(body))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
