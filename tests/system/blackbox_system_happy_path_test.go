//go:build system

package system_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.temporal.io/sdk/client"

	"partner-crm/internal/domain"
	"partner-crm/internal/progress"
	appTemporal "partner-crm/internal/temporal"
)

var _ = Describe("System blackbox happy path", Ordered, func() {
	var repoRoot string
	var cfg systemTestConfig

	BeforeAll(func() {
		if os.Getenv("RUN_BLACKBOX_SYSTEM_TEST") != "1" {
			Skip("set RUN_BLACKBOX_SYSTEM_TEST=1 to run real blackbox system test")
		}

		cfg = loadSystemTestConfig()

		var err error
		repoRoot, err = findRepoRoot()
		Expect(err).ToNot(HaveOccurred())

		By("verifying required docker compose services (including worker) are already running")
		Expect(requireComposeServicesRunning(repoRoot, cfg.RequiredComposeServices)).To(Succeed())

		By("failing fast if infrastructure is unreachable")
		Expect(waitForPostgres(cfg.PostgresDSN, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForHTTPStatus(cfg.MinioReadyURL, 200, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForHTTPStatus(strings.TrimRight(cfg.APIBaseURL, "/")+cfg.APIHealthPath, 200, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForHTTPStatus(strings.TrimRight(cfg.APIBaseURL, "/")+cfg.APIReadyPath, 200, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForWorkerPoller(cfg.TemporalAddress, cfg.TemporalNamespace, cfg.TemporalTaskQueue, cfg.WorkerPollerTimeout)).To(Succeed())
		Expect(applyMigration(repoRoot, cfg.PostgresDSN)).To(Succeed())
	})

	It("creates an applicant, uploads a passport, approves it and moves the applicant forward", func() {
		apiBaseURL := strings.TrimRight(cfg.APIBaseURL, "/")

		By("creating an applicant the way a partner portal does")
		applicant, err := createApplicant(apiBaseURL, map[string]any{
			"partner_id":   "system-test-partner",
			"first_name":   "Amina",
			"last_name":    "Okafor",
			"email":        "amina.okafor@example.com",
			"service_type": "tourist_visa",
			"status":       "docs_pending",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(applicant.ID).ToNot(BeEmpty())

		before, err := getProgress(apiBaseURL, applicant.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(before.Resolution.Stage).To(Equal(progress.StageDocumentsPending))

		By("uploading a passport exactly like a user")
		filePath := filepath.Join(repoRoot, cfg.UploadFixturePath)
		upload, err := uploadDocument(apiBaseURL, applicant.ID, "passport", filePath)
		Expect(err).ToNot(HaveOccurred())
		Expect(upload.DocumentID).ToNot(BeEmpty())
		Expect(upload.WorkflowID).ToNot(BeEmpty())
		Expect(upload.Status).To(Equal(domain.DocumentPending))

		By("waiting for the review workflow to queue the document")
		Eventually(func() []string {
			items, listErr := getPendingReviews(apiBaseURL)
			Expect(listErr).ToNot(HaveOccurred())
			ids := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.DocumentID)
			}
			return ids
		}, cfg.WorkflowCompletionTimeout, cfg.WorkflowPollInterval).Should(ContainElement(upload.DocumentID))

		By("approving the document as a case officer")
		Expect(submitReview(apiBaseURL, upload.DocumentID, map[string]any{
			"decision": "approve",
			"reviewer": "system-test-officer",
		})).To(Succeed())

		By("polling progress until the approval is reflected")
		var after progressResponse
		Eventually(func() int {
			var progressErr error
			after, progressErr = getProgress(apiBaseURL, applicant.ID)
			Expect(progressErr).ToNot(HaveOccurred())
			return after.Resolution.Summary.Approved
		}, cfg.WorkflowCompletionTimeout, cfg.WorkflowPollInterval).Should(Equal(1))
		Expect(after.Resolution.Stage).To(Equal(progress.StageUnderReview))
		Expect(after.Timeline.Label).To(Equal("Under Review"))

		By("checking the applicant's service checklist")
		checklist, err := getChecklist(apiBaseURL, applicant.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(checklist.Checklist.Items).To(ContainElement(progress.ChecklistItem{
			DocumentType: "passport",
			State:        progress.ChecklistApproved,
			Uploads:      1,
		}))

		By("validating activity inputs and outputs from Temporal workflow history")
		temporalClient, err := client.Dial(client.Options{
			HostPort:  cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
		})
		Expect(err).ToNot(HaveOccurred())
		defer temporalClient.Close()

		Eventually(func() ([]string, error) {
			trace, traceErr := collectActivityTrace(context.Background(), temporalClient, upload.WorkflowID)
			return trace.CompletedOrder, traceErr
		}, cfg.WorkflowCompletionTimeout, cfg.WorkflowPollInterval).Should(Equal(cfg.ExpectedActivityOrder))

		trace, err := collectActivityTrace(context.Background(), temporalClient, upload.WorkflowID)
		Expect(err).ToNot(HaveOccurred())
		Expect(trace.ScheduledOrder).To(Equal(cfg.ExpectedActivityOrder))

		registerIn := trace.Inputs["RegisterUploadActivity"].(appTemporal.RegisterUploadInput)
		Expect(registerIn.DocumentID).To(Equal(upload.DocumentID))
		Expect(registerIn.ApplicantID).To(Equal(applicant.ID))
		Expect(registerIn.ObjectKey).To(Equal(applicant.ID + "/" + upload.DocumentID + "/" + filepath.Base(filePath)))

		registerOut := trace.Outputs["RegisterUploadActivity"].(appTemporal.RegisterUploadOutput)
		Expect(registerOut.DocumentType).To(Equal("passport"))
		Expect(registerOut.Status).To(Equal(domain.DocumentPending))

		applyIn := trace.Inputs["ApplyReviewDecisionActivity"].(appTemporal.ApplyReviewDecisionInput)
		Expect(applyIn.Decision).To(Equal(domain.ReviewDecisionApprove))
		Expect(applyIn.Reviewer).To(Equal("system-test-officer"))

		progressOut := trace.Outputs["RecordProgressActivity"].(appTemporal.RecordProgressOutput)
		Expect(progressOut.Resolution.Stage).To(Equal(after.Resolution.Stage))

		signals, err := collectWorkflowSignalNames(context.Background(), temporalClient, upload.WorkflowID)
		Expect(err).ToNot(HaveOccurred())
		Expect(signals).To(Equal([]string{appTemporal.ReviewDecisionSignalName}))

		By("verifying audit records in Postgres")
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		Expect(err).ToNot(HaveOccurred())
		defer db.Close()

		Expect(db.Ping()).To(Succeed())

		auditStates, err := fetchStringRows(db, `SELECT state FROM audit_log WHERE document_id = $1 ORDER BY id`, upload.DocumentID)
		Expect(err).ToNot(HaveOccurred())
		Expect(auditStates).To(Equal([]string{"STORED", "QUEUED", "APPROVED", "PROGRESS"}))
	})
})
