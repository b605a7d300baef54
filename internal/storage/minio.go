package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound is returned by GetDocument when the bucket has no object
// under the requested key.
var ErrObjectNotFound = errors.New("object not found")

type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

// ObjectKey is the bucket layout for applicant documents:
// <applicant id>/<document id>/<filename>.
func ObjectKey(applicantID, documentID, filename string) string {
	return path.Join(applicantID, documentID, path.Base(filename))
}

func (m *MinioStore) PutDocument(ctx context.Context, applicantID, documentID, filename, contentType string, content []byte) (string, error) {
	objectKey := ObjectKey(applicantID, documentID, filename)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

// GetDocument reads a stored document. GetObject is lazy, so a missing key
// only surfaces on the first read.
func (m *MinioStore) GetDocument(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, objectError(objectKey, err)
	}
	defer obj.Close()

	data := new(bytes.Buffer)
	if _, err := data.ReadFrom(obj); err != nil {
		return nil, objectError(objectKey, err)
	}
	return data.Bytes(), nil
}

func objectError(objectKey string, err error) error {
	if isNoSuchKey(err) {
		return fmt.Errorf("%s: %w", objectKey, ErrObjectNotFound)
	}
	return fmt.Errorf("read object %s: %w", objectKey, err)
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
