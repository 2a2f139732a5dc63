// Package s3fetch reads archive inputs from an S3 prefix and uploads
// finished archives.
package s3fetch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// API is the subset of the S3 client used here.
type API interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
	manager.UploadAPIClient
}

// Client wraps an S3 API with the transfer managers.
type Client struct {
	api        API
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

// NewClient creates a client using the default AWS configuration chain.
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewClientWithAPI(s3.NewFromConfig(cfg)), nil
}

// NewClientWithAPI creates a client over an existing S3 API.
func NewClientWithAPI(api API) *Client {
	return &Client{
		api: api,
		// Objects are fetched in parallel by the caller; keep each one serial.
		downloader: manager.NewDownloader(api, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
		uploader: manager.NewUploader(api),
	}
}

// Download reads the whole object into memory. sizeHint presizes the buffer.
func (c *Client) Download(ctx context.Context, bucket, key string, sizeHint int64) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(make([]byte, 0, max(sizeHint, 0)))
	n, err := c.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes()[:n], nil
}

// Upload writes data to the object at uri.
func (c *Client) Upload(ctx context.Context, uri string, data []byte) error {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("upload %s: missing object key", uri)
	}

	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
