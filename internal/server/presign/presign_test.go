package presign

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRandomStorageKey(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })
	now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }

	k1 := GetRandomStorageKey()
	k2 := GetRandomStorageKey()

	re := regexp.MustCompile(`^attachments/2024/3/7/[0-9a-f-]{36}$`)
	assert.Regexp(t, re, k1)
	assert.NotEqual(t, k1, k2)
}

func stubAWS(t *testing.T) *s3.PresignPostOptions {
	t.Helper()
	origLoad, origNew, origPre, origPost := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, presignPostObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, presignPostObject = origLoad, origNew, origPre, origPost
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-north-1", lo.Region)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		require.NotNil(t, o.BaseEndpoint)
		assert.Equal(t, "http://127.0.0.1:9000", *o.BaseEndpoint)
		assert.True(t, o.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	captured := &s3.PresignPostOptions{}
	presignPostObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error) {
		for _, fn := range optFns {
			fn(captured)
		}
		assert.Equal(t, "attachments", aws.ToString(in.Bucket))
		return &s3.PresignedPostRequest{
			URL:    "http://127.0.0.1:9000/attachments",
			Values: map[string]string{"policy": "p", "x-amz-signature": "sig", "key": aws.ToString(in.Key)},
		}, nil
	}
	return captured
}

func s3Opts() S3Options {
	return S3Options{
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Region:       "eu-north-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		Bucket:       "attachments",
		TTL:          10 * time.Minute,
	}
}

func TestS3Presigner_PresignPost(t *testing.T) {
	captured := stubAWS(t)

	p, err := NewS3Presigner(context.Background(), s3Opts())
	require.NoError(t, err)

	cred, err := p.PresignPost(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000/attachments", cred.SignedURL)
	assert.True(t, strings.HasPrefix(cred.URLFields[KeyField], "attachments/"))
	assert.Equal(t, "sig", cred.URLFields["x-amz-signature"])

	assert.Equal(t, 10*time.Minute, captured.Expires)
	assert.Contains(t, captured.Conditions, []interface{}{"eq", "$x-amz-acl", "public-read"})
}

func TestS3Presigner_Errors(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		orig := loadDefaultAWSConfig
		t.Cleanup(func() { loadDefaultAWSConfig = orig })
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no config")
		}
		_, err := NewS3Presigner(context.Background(), s3Opts())
		require.ErrorContains(t, err, "no config")
	})

	t.Run("presign", func(t *testing.T) {
		stubAWS(t)
		presignPostObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error) {
			return nil, errors.New("boom")
		}
		p, err := NewS3Presigner(context.Background(), s3Opts())
		require.NoError(t, err)

		_, err = p.PresignPost(context.Background())
		require.ErrorContains(t, err, "presign post: boom")
	})
}

func TestMinioPresigner_PresignPost(t *testing.T) {
	// Region is fixed, so signing needs no round trip to the server.
	p, err := NewMinioPresigner(MinioOptions{
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		Bucket:    "attachments",
		TTL:       5 * time.Minute,
	})
	require.NoError(t, err)

	cred, err := p.PresignPost(context.Background())
	require.NoError(t, err)

	assert.Contains(t, cred.SignedURL, "127.0.0.1:9000")
	assert.Contains(t, cred.SignedURL, "attachments")
	assert.True(t, strings.HasPrefix(cred.URLFields[KeyField], "attachments/"))
	assert.NotEmpty(t, cred.URLFields["policy"])
}

func TestNewMinioPresigner_BadEndpoint(t *testing.T) {
	_, err := NewMinioPresigner(MinioOptions{Endpoint: "not a url"})
	require.Error(t, err)
}

func TestPublicReadPolicy(t *testing.T) {
	p := publicReadPolicy("attachments")
	assert.Contains(t, p, `"arn:aws:s3:::attachments/*"`)
	assert.Contains(t, p, `"s3:GetObject"`)
}
