package utils

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "github.com/raushankrgupta/vehicle-catalog-importer/config"
)

var (
	S3Client   *s3.Client
	s3InitOnce sync.Once
	s3InitErr  error
)

// InitS3 initializes the S3 client
func InitS3(ctx context.Context) error {
	s3InitOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appConfig.AWSRegion))
		if err != nil {
			s3InitErr = fmt.Errorf("unable to load SDK config: %w", err)
			return
		}
		S3Client = s3.NewFromConfig(cfg)
	})
	return s3InitErr
}

// UploadFileToS3 uploads a file to S3 and returns the Object Key
func UploadFileToS3(ctx context.Context, file io.Reader, objectKey string, contentType string) (string, error) {
	if err := InitS3(ctx); err != nil {
		return "", err
	}
	if appConfig.AWSBucketName == "" {
		return "", fmt.Errorf("AWS_BUCKET_NAME is not set")
	}

	_, err := S3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(appConfig.AWSBucketName),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return objectKey, nil
}

// PublicObjectURL returns the URL the storefront serves an archived object
// from: ASSETS_BASE_URL when set, else the bucket's virtual-hosted URL.
func PublicObjectURL(objectKey string) string {
	key := strings.TrimLeft(objectKey, "/")
	if appConfig.AssetsBaseURL != "" {
		return appConfig.AssetsBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", appConfig.AWSBucketName, appConfig.AWSRegion, key)
}
