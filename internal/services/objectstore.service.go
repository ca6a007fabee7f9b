package services

import (
	"context"
	"time"

	"printfleet/config"
	"printfleet/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 15 * time.Minute

// ObjectStoreService hands out presigned PUT URLs for the S3-compatible
// bucket holding signature and nozzle check images. Clients upload directly
// to the bucket, so image bytes never transit the API.
type ObjectStoreService struct {
	config    config.Config
	log       logger.Logger
	presigner *s3.PresignClient
	bucket    string
}

func NewObjectStoreService(ctx context.Context, cfg config.Config) (*ObjectStoreService, error) {
	log := logger.New("ObjectStoreService")

	if cfg.ObjectStoreEndpoint == "" {
		log.Info("Object store not configured, uploads disabled")
		return &ObjectStoreService{config: cfg, log: log}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.ObjectStoreAccessKey,
			cfg.ObjectStoreSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, log.Err("failed to load object store configuration", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.ObjectStoreEndpoint)
		o.UsePathStyle = true
	})

	log.Info("Object store service initialized successfully", "bucket", cfg.ObjectStoreBucket)

	return &ObjectStoreService{
		config:    cfg,
		log:       log,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.ObjectStoreBucket,
	}, nil
}

// Enabled reports whether an object store is configured.
func (os *ObjectStoreService) Enabled() bool {
	return os.presigner != nil
}

// SignUploadURL returns a presigned PUT URL for the given object key. The
// caller uploads with the same content type it passed here.
func (os *ObjectStoreService) SignUploadURL(
	ctx context.Context,
	key, contentType string,
) (string, error) {
	log := os.log.TraceFromContext(ctx).Function("SignUploadURL")

	if os.presigner == nil {
		return "", log.ErrMsg("object store not configured")
	}

	request, err := os.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(os.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", log.Err("failed to presign upload url", err, "key", key)
	}

	return request.URL, nil
}
