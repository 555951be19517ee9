// Package objectstore persists synthesized audio artifacts in MinIO so
// that update frames can reference a stable URL instead of a local path.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/logging"
)

// MinioClient holds the MinIO client, target bucket and URL settings.
type MinioClient struct {
	Client     *minio.Client
	BucketName string

	endpoint   string
	secure     bool
	publicBase string
	logger     *zap.SugaredLogger
}

var globalMinioClient *MinioClient

// Enabled reports whether the environment carries MinIO settings at all.
// An unset MINIO_ENDPOINT disables artifact uploads without error.
func Enabled() bool {
	return os.Getenv("MINIO_ENDPOINT") != ""
}

// InitMinioClient initializes the global MinIO client from environment
// variables and ensures the bucket exists. Call at application startup.
func InitMinioClient(logger *zap.Logger) error {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKeyID := os.Getenv("MINIO_ACCESS_KEY_ID")
	secretAccessKey := os.Getenv("MINIO_SECRET_ACCESS_KEY")
	bucketName := os.Getenv("MINIO_BUCKET_NAME")
	useSSLStr := os.Getenv("MINIO_USE_SSL")

	sugar := logging.OrNop(logger).Sugar()

	if endpoint == "" || accessKeyID == "" || secretAccessKey == "" || bucketName == "" {
		return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, and MINIO_BUCKET_NAME must be set")
	}

	useSSL, err := strconv.ParseBool(useSSLStr)
	if err != nil {
		if useSSLStr != "" {
			sugar.Warnf("MINIO_USE_SSL is not a valid boolean (%q), defaulting to false", useSSLStr)
		}
		useSSL = false
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if MinIO bucket '%s' exists: %w", bucketName, err)
	}
	if !exists {
		sugar.Infof("MinIO bucket '%s' does not exist, creating it", bucketName)
		if err := minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create MinIO bucket '%s': %w", bucketName, err)
		}
	}

	globalMinioClient = &MinioClient{
		Client:     minioClient,
		BucketName: bucketName,
		endpoint:   endpoint,
		secure:     useSSL,
		publicBase: strings.TrimRight(os.Getenv("MINIO_PUBLIC_BASE_URL"), "/"),
		logger:     sugar,
	}
	sugar.Infof("MinIO client initialized (bucket=%s)", bucketName)
	return nil
}

// GetGlobalMinioClient returns the initialized global MinIO client.
func GetGlobalMinioClient() (*MinioClient, error) {
	if globalMinioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized. Call InitMinioClient first")
	}
	return globalMinioClient, nil
}

// PublicURL builds the externally reachable locator for an object.
// MINIO_PUBLIC_BASE_URL overrides the endpoint-derived form for setups
// where the bucket sits behind a CDN or reverse proxy.
func (mc *MinioClient) PublicURL(objectName string) string {
	if mc.publicBase != "" {
		return fmt.Sprintf("%s/%s", mc.publicBase, objectName)
	}
	scheme := "http"
	if mc.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, mc.endpoint, mc.BucketName, objectName)
}

// Exists reports whether objectName is already stored in the bucket.
func (mc *MinioClient) Exists(ctx context.Context, objectName string) (bool, error) {
	if mc.Client == nil {
		return false, fmt.Errorf("MinIO client not initialized properly in MinioClient struct")
	}
	_, err := mc.Client.StatObject(ctx, mc.BucketName, objectName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat object '%s' in bucket '%s': %w", objectName, mc.BucketName, err)
}

// UploadFile stores a local file under objectName, skipping the transfer
// when the object already exists, and returns its public URL.
func (mc *MinioClient) UploadFile(ctx context.Context, localPath, objectName string) (string, error) {
	if mc.Client == nil {
		return "", fmt.Errorf("MinIO client not initialized properly in MinioClient struct")
	}
	if mc.BucketName == "" {
		return "", fmt.Errorf("MinIO bucket name not configured in MinioClient struct")
	}

	already, err := mc.Exists(ctx, objectName)
	if err != nil {
		return "", err
	}
	if already {
		mc.logger.Infof("Object '%s' already exists in bucket '%s', skipping upload", objectName, mc.BucketName)
		return mc.PublicURL(objectName), nil
	}

	info, err := mc.Client.FPutObject(ctx, mc.BucketName, objectName, localPath, minio.PutObjectOptions{
		ContentType: "audio/wav",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to MinIO (bucket: %s, object: %s): %w", mc.BucketName, objectName, err)
	}

	mc.logger.Infof("Uploaded '%s' (%d bytes) to MinIO bucket '%s'", objectName, info.Size, mc.BucketName)
	return mc.PublicURL(objectName), nil
}

// GetFileBytes retrieves an object as a byte slice, for serving artifacts
// that are no longer on local disk.
func (mc *MinioClient) GetFileBytes(ctx context.Context, objectName string) ([]byte, error) {
	if mc.Client == nil {
		return nil, fmt.Errorf("MinIO client not initialized properly in MinioClient struct")
	}
	object, err := mc.Client.GetObject(ctx, mc.BucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", objectName, mc.BucketName, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object '%s' data: %w", objectName, err)
	}
	return data, nil
}
