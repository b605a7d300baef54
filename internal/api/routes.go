package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Get("/reviews/pending", h.PendingReviews)

		r.Route("/applicants", func(r chi.Router) {
			r.Post("/", h.CreateApplicant)
			r.Get("/", h.ListApplicants)
			r.Route("/{applicantId}", func(r chi.Router) {
				r.Get("/", func(w http.ResponseWriter, r *http.Request) {
					h.GetApplicant(w, r, chi.URLParam(r, "applicantId"))
				})
				r.Patch("/status", func(w http.ResponseWriter, r *http.Request) {
					h.UpdateApplicantStatus(w, r, chi.URLParam(r, "applicantId"))
				})
				r.Get("/documents", func(w http.ResponseWriter, r *http.Request) {
					h.ListDocuments(w, r, chi.URLParam(r, "applicantId"))
				})
				r.Post("/documents", func(w http.ResponseWriter, r *http.Request) {
					h.UploadDocument(w, r, chi.URLParam(r, "applicantId"))
				})
				r.Get("/progress", func(w http.ResponseWriter, r *http.Request) {
					h.GetProgress(w, r, chi.URLParam(r, "applicantId"))
				})
				r.Get("/checklist", func(w http.ResponseWriter, r *http.Request) {
					h.GetChecklist(w, r, chi.URLParam(r, "applicantId"))
				})
			})
		})

		r.Route("/documents/{documentId}", func(r chi.Router) {
			r.Get("/file", func(w http.ResponseWriter, r *http.Request) {
				h.DownloadDocument(w, r, chi.URLParam(r, "documentId"))
			})
			r.Post("/review", func(w http.ResponseWriter, r *http.Request) {
				h.SubmitReview(w, r, chi.URLParam(r, "documentId"))
			})
		})
	})

	return r
}
