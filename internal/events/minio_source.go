package events

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

const objectCreatedEvent = "s3:ObjectCreated:*"

type UploadEvent struct {
	ApplicantID string
	DocumentID  string
	Filename    string
	ObjectKey   string
	EventName   string
}

type UploadEventSource interface {
	Run(ctx context.Context, handler func(context.Context, UploadEvent) error) error
}

type MinioUploadEventSource struct {
	client *minio.Client
	bucket string
	prefix string
	suffix string
}

func NewMinioUploadEventSource(client *minio.Client, bucket string, prefix string, suffix string) *MinioUploadEventSource {
	return &MinioUploadEventSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
		suffix: suffix,
	}
}

// Run delivers one UploadEvent per created object until ctx is cancelled.
// Objects whose key does not follow the applicant/document/filename layout
// are skipped.
func (s *MinioUploadEventSource) Run(ctx context.Context, handler func(context.Context, UploadEvent) error) error {
	notificationCh := s.client.ListenBucketNotification(ctx, s.bucket, s.prefix, s.suffix, []string{objectCreatedEvent})
	for {
		select {
		case <-ctx.Done():
			return nil
		case info, ok := <-notificationCh:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("minio notification stream closed")
			}
			if info.Err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("minio notification stream error: %w", info.Err)
			}
			for _, record := range info.Records {
				event, err := eventFromKey(record.S3.Object.Key, record.EventName)
				if err != nil {
					continue
				}
				if err := handler(ctx, event); err != nil {
					return err
				}
			}
		}
	}
}

func eventFromKey(encodedKey string, eventName string) (UploadEvent, error) {
	objectKey, err := decodeObjectKey(encodedKey)
	if err != nil {
		return UploadEvent{}, err
	}
	applicantID, documentID, filename, err := parseObjectKey(objectKey)
	if err != nil {
		return UploadEvent{}, err
	}
	return UploadEvent{
		ApplicantID: applicantID,
		DocumentID:  documentID,
		Filename:    filename,
		ObjectKey:   objectKey,
		EventName:   eventName,
	}, nil
}

func decodeObjectKey(encoded string) (string, error) {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return "", err
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", fmt.Errorf("object key is empty")
	}
	return decoded, nil
}

func parseObjectKey(objectKey string) (string, string, string, error) {
	cleaned := strings.Trim(strings.ReplaceAll(objectKey, "\\", "/"), "/")
	parts := strings.SplitN(cleaned, "/", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("object key %q does not match applicant_id/document_id/filename", objectKey)
	}
	applicantID := strings.TrimSpace(parts[0])
	documentID := strings.TrimSpace(parts[1])
	filename := strings.TrimSpace(parts[2])
	if applicantID == "" || documentID == "" || filename == "" {
		return "", "", "", fmt.Errorf("object key %q missing applicant id, document id or filename", objectKey)
	}
	return applicantID, documentID, filename, nil
}
