package presign

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configure a MinioPresigner. Endpoint is a full URL; its
// scheme selects TLS.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	TTL       time.Duration
}

// MinioPresigner signs POST policies with minio-go.
type MinioPresigner struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewMinioPresigner(opts MinioOptions) (*MinioPresigner, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid minio endpoint %q", opts.Endpoint)
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: u.Scheme == "https",
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioPresigner{client: client, bucket: opts.Bucket, ttl: opts.TTL}, nil
}

func (p *MinioPresigner) PresignPost(ctx context.Context) (*Credential, error) {
	key := GetRandomStorageKey()

	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(p.bucket); err != nil {
		return nil, err
	}
	if err := policy.SetKey(key); err != nil {
		return nil, err
	}
	if err := policy.SetExpires(now().UTC().Add(p.ttl)); err != nil {
		return nil, err
	}

	u, fields, err := p.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("presign post policy: %w", err)
	}
	fields[KeyField] = key

	return &Credential{SignedURL: u.String(), URLFields: fields}, nil
}

// EnsureBucket creates the bucket when missing and makes its objects
// publicly readable.
func (p *MinioPresigner) EnsureBucket(ctx context.Context) (created bool, err error) {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
			return false, fmt.Errorf("create bucket %q: %w", p.bucket, err)
		}
	}

	if err := p.client.SetBucketPolicy(ctx, p.bucket, publicReadPolicy(p.bucket)); err != nil {
		return !exists, fmt.Errorf("set bucket policy: %w", err)
	}
	return !exists, nil
}

func publicReadPolicy(bucket string) string {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
