package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"partner-crm/internal/config"
	"partner-crm/internal/events"
	"partner-crm/internal/logging"
	appTemporal "partner-crm/internal/temporal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New("event-handler", cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		logger.Fatal("connect minio", zap.Error(err))
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logging.NewTemporalLogger(logger),
	})
	if err != nil {
		logger.Fatal("connect temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	source := events.NewMinioUploadEventSource(minioClient, cfg.MinioBucket, "", "")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("listening for object-created events", zap.String("bucket", cfg.MinioBucket))
	err = source.Run(ctx, func(parent context.Context, event events.UploadEvent) error {
		workflowID := cfg.WorkflowID(event.DocumentID)
		execCtx, cancel := context.WithTimeout(parent, 15*time.Second)
		defer cancel()

		started, err := appTemporal.StartDocumentReview(execCtx, temporalClient, cfg.TemporalTaskQueue, workflowID, appTemporal.WorkflowInput{
			DocumentID:  event.DocumentID,
			ApplicantID: event.ApplicantID,
			ObjectKey:   event.ObjectKey,
		})
		if err != nil {
			return err
		}
		if !started {
			logger.Info("workflow already started", zap.String("workflow_id", workflowID), zap.String("object_key", event.ObjectKey))
			return nil
		}
		logger.Info("started review workflow", zap.String("workflow_id", workflowID), zap.String("object_key", event.ObjectKey))
		return nil
	})
	if err != nil {
		logger.Fatal("event-handler stopped with error", zap.Error(err))
	}
}
