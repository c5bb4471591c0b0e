// utils/storage.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var storageClient *s3.Client
var storageBucket string
var publicBaseURL string

// InitStorage configures the S3-compatible client for the item-images
// bucket. Endpoint/credentials come from the environment so the same
// code runs against R2, MinIO or plain S3.
func InitStorage() error {
	endpoint := os.Getenv("STORAGE_ENDPOINT")
	accessKeyID := os.Getenv("STORAGE_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("STORAGE_ACCESS_KEY_SECRET")
	storageBucket = os.Getenv("STORAGE_BUCKET")
	if storageBucket == "" {
		storageBucket = "found-item-images"
	}
	publicBaseURL = os.Getenv("PUBLIC_BASE_URL")
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("%s/%s", endpoint, storageBucket)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load storage config: %w", err)
	}

	storageClient = s3.NewFromConfig(cfg)
	return nil
}

// UploadToBucket uploads a multipart file under the given object key
// and returns the public URL.
// key is the bucket object key (e.g., "items/black-wallet-abc123.jpg")
func UploadToBucket(fileHeader *multipart.FileHeader, key string) (string, error) {
	if storageClient == nil {
		return "", fmt.Errorf("storage not initialized")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = storageClient.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(storageBucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to bucket: %w", err)
	}

	return PublicURL(key), nil
}

// PublicURL derives the public URL for an object key.
func PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", publicBaseURL, key)
}

// RemoveFromBucket deletes objects by key in a single batch call.
// Keys are persisted at upload time, so nothing here ever parses URLs.
func RemoveFromBucket(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if storageClient == nil {
		return fmt.Errorf("storage not initialized")
	}

	objects := make([]types.ObjectIdentifier, len(keys))
	for i, k := range keys {
		objects[i] = types.ObjectIdentifier{Key: aws.String(k)}
	}

	_, err := storageClient.DeleteObjects(context.TODO(), &s3.DeleteObjectsInput{
		Bucket: aws.String(storageBucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete from bucket: %w", err)
	}
	return nil
}
