package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cliptide/backend/internal/telemetry"
	"github.com/google/uuid"
)

// S3Uploader handles video and image uploads to AWS S3
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// UploadResult contains the result of an S3 upload
type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Region string `json:"region"`
	Size   int64  `json:"size"`
}

// NewS3Uploader creates a new S3 uploader
func NewS3Uploader(region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Uploader{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: baseURL,
	}, nil
}

// UploadVideo uploads a video file to S3 with proper naming and metadata
func (u *S3Uploader) UploadVideo(ctx context.Context, videoData []byte, userID, originalFilename string) (*UploadResult, error) {
	fileID := uuid.New().String()
	extension := filepath.Ext(originalFilename)
	if extension == "" {
		extension = ".mp4"
	}

	// videos/{year}/{month}/{userID}/{fileID}.mp4
	now := time.Now()
	key := fmt.Sprintf("videos/%d/%02d/%s/%s%s",
		now.Year(), now.Month(), userID, fileID, extension)

	putObjectInput := &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(videoData),
		ContentType:  aws.String(getContentType(extension)),
		CacheControl: aws.String("max-age=3600"),
		Metadata: map[string]string{
			"user-id":           userID,
			"original-filename": originalFilename,
			"upload-timestamp":  now.Format(time.RFC3339),
			"file-type":         "video",
		},
	}

	ctx, span := telemetry.TraceS3Call(ctx, "upload_video", map[string]interface{}{
		"bucket":       u.bucket,
		"key":          key,
		"content_type": getContentType(extension),
		"size_bytes":   int64(len(videoData)),
		"user_id":      userID,
	})
	defer span.End()

	if _, err := u.client.PutObject(ctx, putObjectInput); err != nil {
		telemetry.RecordServiceError(span, err)
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}
	telemetry.RecordServiceSuccess(span, map[string]interface{}{
		"size_bytes": int64(len(videoData)),
	})

	return u.result(key, int64(len(videoData))), nil
}

// UploadImage uploads a thumbnail or avatar image
func (u *S3Uploader) UploadImage(ctx context.Context, imageData []byte, userID, kind, originalFilename string) (*UploadResult, error) {
	fileID := uuid.New().String()
	extension := filepath.Ext(originalFilename)
	if extension == "" {
		extension = ".jpg"
	}

	key := fmt.Sprintf("images/%s/%s/%s%s", kind, userID, fileID, extension)

	putObjectInput := &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(imageData),
		ContentType:  aws.String(getContentType(extension)),
		CacheControl: aws.String("max-age=86400"),
		Metadata: map[string]string{
			"user-id":   userID,
			"file-type": kind,
		},
	}

	ctx, span := telemetry.TraceS3Call(ctx, "upload_image", map[string]interface{}{
		"bucket":       u.bucket,
		"key":          key,
		"content_type": getContentType(extension),
		"size_bytes":   int64(len(imageData)),
		"user_id":      userID,
	})
	defer span.End()

	if _, err := u.client.PutObject(ctx, putObjectInput); err != nil {
		telemetry.RecordServiceError(span, err)
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	telemetry.RecordServiceSuccess(span, map[string]interface{}{
		"size_bytes": int64(len(imageData)),
	})

	return u.result(key, int64(len(imageData))), nil
}

// DeleteFile deletes a file from S3
func (u *S3Uploader) DeleteFile(ctx context.Context, key string) error {
	ctx, span := telemetry.TraceS3Call(ctx, "delete_object", map[string]interface{}{
		"bucket": u.bucket,
		"key":    key,
	})
	defer span.End()

	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		telemetry.RecordServiceError(span, err)
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	telemetry.RecordServiceSuccess(span, nil)
	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}

func (u *S3Uploader) result(key string, size int64) *UploadResult {
	return &UploadResult{
		Key:    key,
		URL:    fmt.Sprintf("%s/%s", strings.TrimSuffix(u.baseURL, "/"), key),
		Bucket: u.bucket,
		Region: u.region,
		Size:   size,
	}
}

// getContentType returns the appropriate MIME type for file extensions
func getContentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
