package s3fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/eunmann/micropak/internal/logctx"
	"github.com/eunmann/micropak/pkg/logging"
	"github.com/eunmann/micropak/pkg/pakbuild"
	"github.com/eunmann/micropak/pkg/source"
)

// Prefix is a source.Source over every object below an S3 prefix. Archive
// paths are object keys relative to the prefix.
type Prefix struct {
	client      *Client
	bucket      string
	prefix      string
	concurrency int
}

var _ source.Source = (*Prefix)(nil)

// NewPrefix creates a source for uri (s3://bucket/prefix/).
func NewPrefix(client *Client, uri string, concurrency int) (*Prefix, error) {
	bucket, prefix, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if concurrency <= 0 {
		concurrency = source.DefaultConcurrency
	}
	return &Prefix{client: client, bucket: bucket, prefix: prefix, concurrency: concurrency}, nil
}

// Name returns the last component of the prefix, or the bucket name.
func (p *Prefix) Name() string {
	trimmed := strings.TrimSuffix(p.prefix, "/")
	if trimmed == "" {
		return p.bucket
	}
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}

// List pages through the prefix. Folder placeholder keys (ending in "/")
// are skipped.
func (p *Prefix) List(ctx context.Context) ([]source.Object, error) {
	paginator := s3.NewListObjectsV2Paginator(p.client.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(p.prefix),
	})

	var objs []source.Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", p.bucket, p.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			objs = append(objs, source.Object{
				Path: source.NormalizePath(strings.TrimPrefix(key, p.prefix)),
				Key:  key,
				Size: aws.ToInt64(obj.Size),
			})
		}
	}

	log := logctx.FromContext(ctx)
	log.Debug().
		Str("bucket", p.bucket).
		Str("prefix", p.prefix).
		Int("objects", len(objs)).
		Msg("listed S3 prefix")

	return objs, nil
}

// Load downloads objs concurrently. The result has the same order as objs.
// Each completed download is logged at debug level with the running
// progress.
func (p *Prefix) Load(ctx context.Context, objs []source.Object) ([]pakbuild.InputFile, error) {
	files := make([]pakbuild.InputFile, len(objs))
	progress := logging.NewProgressTracker("download", int64(len(objs)), logctx.FromContext(ctx))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, obj := range objs {
		g.Go(func() error {
			start := time.Now()
			data, err := p.client.Download(ctx, p.bucket, obj.Key, obj.Size)
			if err != nil {
				return err
			}
			files[i] = pakbuild.InputFile{Path: obj.Path, Data: data}
			progress.RecordCompletion(obj.Key, int64(len(data)), time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("download objects: %w", err)
	}
	return files, nil
}
