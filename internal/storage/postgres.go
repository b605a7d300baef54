package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"partner-crm/internal/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// isID reports whether id can be compared against a UUID column. Lookups
// with anything else are answered with sql.ErrNoRows instead of a cast error.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

const applicantColumns = `id, partner_id, first_name, last_name, email, phone, nationality, service_type, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplicant(row rowScanner) (domain.Applicant, error) {
	var a domain.Applicant
	if err := row.Scan(
		&a.ID,
		&a.PartnerID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.Phone,
		&a.Nationality,
		&a.ServiceType,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return domain.Applicant{}, err
	}
	return a, nil
}

func (s *PostgresStore) CreateApplicant(ctx context.Context, a domain.Applicant) (domain.Applicant, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO applicants (id, partner_id, first_name, last_name, email, phone, nationality, service_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+applicantColumns,
		a.ID, a.PartnerID, a.FirstName, a.LastName, a.Email, a.Phone, a.Nationality, a.ServiceType, a.Status)
	return scanApplicant(row)
}

func (s *PostgresStore) GetApplicant(ctx context.Context, applicantID string) (domain.Applicant, error) {
	if !isID(applicantID) {
		return domain.Applicant{}, sql.ErrNoRows
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, applicantID)
	return scanApplicant(row)
}

func (s *PostgresStore) ListApplicants(ctx context.Context, filter domain.ApplicantFilter) ([]domain.Applicant, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, st := range filter.Statuses {
		statuses = append(statuses, string(st))
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicantColumns+`
		FROM applicants
		WHERE ($1 = '' OR partner_id = $1)
		  AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
		ORDER BY created_at DESC
	`, filter.PartnerID, pq.Array(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Applicant, 0)
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateApplicantStatus returns sql.ErrNoRows when the applicant does not exist.
func (s *PostgresStore) UpdateApplicantStatus(ctx context.Context, applicantID string, status domain.ApplicantStatus) (domain.Applicant, error) {
	if !isID(applicantID) {
		return domain.Applicant{}, sql.ErrNoRows
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE applicants
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+applicantColumns,
		applicantID, status)
	return scanApplicant(row)
}

const documentColumns = `id, applicant_id, document_type, filename, COALESCE(object_key, ''), status, rejected_reason, reviewer, reviewed_at, created_at, updated_at`

func scanDocument(row rowScanner) (domain.Document, error) {
	var d domain.Document
	var rejectedReason sql.NullString
	var reviewer sql.NullString
	var reviewedAt sql.NullTime
	if err := row.Scan(
		&d.ID,
		&d.ApplicantID,
		&d.DocumentType,
		&d.Filename,
		&d.ObjectKey,
		&d.Status,
		&rejectedReason,
		&reviewer,
		&reviewedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return domain.Document{}, err
	}
	if rejectedReason.Valid {
		d.RejectedReason = &rejectedReason.String
	}
	if reviewer.Valid {
		d.Reviewer = &reviewer.String
	}
	if reviewedAt.Valid {
		d.ReviewedAt = &reviewedAt.Time
	}
	return d, nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, d domain.Document) (domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, applicant_id, document_type, filename, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+documentColumns,
		d.ID, d.ApplicantID, d.DocumentType, d.Filename, domain.DocumentPending)
	return scanDocument(row)
}

func (s *PostgresStore) SetDocumentObjectKey(ctx context.Context, documentID, objectKey string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET object_key = $2, updated_at = NOW()
		WHERE id = $1
	`, documentID, objectKey)
	return err
}

// DeleteDocument removes a document row and, through the foreign key, its
// review queue entry. Audit rows are kept.
func (s *PostgresStore) DeleteDocument(ctx context.Context, documentID string) error {
	if !isID(documentID) {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	return err
}

func (s *PostgresStore) GetDocument(ctx context.Context, documentID string) (domain.Document, error) {
	if !isID(documentID) {
		return domain.Document{}, sql.ErrNoRows
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, documentID)
	return scanDocument(row)
}

func (s *PostgresStore) ListDocuments(ctx context.Context, applicantID string) ([]domain.Document, error) {
	if !isID(applicantID) {
		return []domain.Document{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE applicant_id = $1
		ORDER BY created_at ASC
	`, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// QueueReview opens a pending review. A review that was already resolved is
// left alone so activity retries cannot reopen it.
func (s *PostgresStore) QueueReview(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_queue (document_id, status)
		VALUES ($1, $2)
		ON CONFLICT (document_id) DO NOTHING
	`, documentID, domain.ReviewQueuePending)
	return err
}

func (s *PostgresStore) ApplyReviewDecision(ctx context.Context, documentID string, status domain.DocumentStatus, reviewer string, reason *string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE documents
		SET status = $2,
		    reviewer = NULLIF($3, ''),
		    rejected_reason = $4,
		    reviewed_at = $5,
		    updated_at = NOW()
		WHERE id = $1
	`, documentID, status, reviewer, reason, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE review_queue
		SET status = $2, updated_at = NOW()
		WHERE document_id = $1
	`, documentID, domain.ReviewQueueStateFor(status))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresStore) ListPendingReviews(ctx context.Context) ([]domain.ReviewQueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.document_id, d.applicant_id, d.document_type, d.filename, q.status, q.created_at
		FROM review_queue q
		JOIN documents d ON d.id = q.document_id
		WHERE q.status = $1
		ORDER BY q.created_at ASC
	`, domain.ReviewQueuePending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ReviewQueueItem, 0)
	for rows.Next() {
		var item domain.ReviewQueueItem
		if err := rows.Scan(&item.DocumentID, &item.ApplicantID, &item.DocumentType, &item.Filename, &item.Status, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) InsertAudit(ctx context.Context, applicantID, documentID string, state domain.AuditState, detail any) error {
	var payload []byte
	switch v := detail.(type) {
	case nil:
		payload = []byte("{}")
	case []byte:
		payload = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		payload = b
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (applicant_id, document_id, state, detail)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4::jsonb)
	`, applicantID, documentID, state, string(payload))
	return err
}
