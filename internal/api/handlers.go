package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"partner-crm/internal/catalog"
	"partner-crm/internal/config"
	"partner-crm/internal/domain"
)

type Store interface {
	Ping(ctx context.Context) error
	CreateApplicant(ctx context.Context, a domain.Applicant) (domain.Applicant, error)
	GetApplicant(ctx context.Context, applicantID string) (domain.Applicant, error)
	ListApplicants(ctx context.Context, filter domain.ApplicantFilter) ([]domain.Applicant, error)
	UpdateApplicantStatus(ctx context.Context, applicantID string, status domain.ApplicantStatus) (domain.Applicant, error)
	CreateDocument(ctx context.Context, d domain.Document) (domain.Document, error)
	SetDocumentObjectKey(ctx context.Context, documentID, objectKey string) error
	GetDocument(ctx context.Context, documentID string) (domain.Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
	ListDocuments(ctx context.Context, applicantID string) ([]domain.Document, error)
	ListPendingReviews(ctx context.Context) ([]domain.ReviewQueueItem, error)
}

type BlobStore interface {
	PutDocument(ctx context.Context, applicantID, documentID, filename, contentType string, content []byte) (string, error)
	GetDocument(ctx context.Context, objectKey string) ([]byte, error)
}

type Handler struct {
	cfg            config.Config
	store          Store
	blob           BlobStore
	catalog        *catalog.Catalog
	temporalClient client.Client
	logger         *zap.Logger
}

func NewHandler(cfg config.Config, store Store, blob BlobStore, cat *catalog.Catalog, temporalClient client.Client, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:            cfg,
		store:          store,
		blob:           blob,
		catalog:        cat,
		temporalClient: temporalClient,
		logger:         logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog)
}

// internalError logs err against the request and writes a 500 with msg.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": msg})
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": fields})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
