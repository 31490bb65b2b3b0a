package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
)

const (
	signedURLPath       = "uploads/signed_s3_upload_url"
	customerAttachments = "customers/%s/attachments"
)

type signedURLRequest struct {
	UploadType string `json:"uploadType"`
}

type createAttachmentRequest struct {
	Filename string `json:"filename"`
	S3Key    string `json:"s3_key"`
}

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.http.Timeout = d }
}

// NewHTTPClient builds a client for the backend rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &HTTPClient{baseURL: u, http: &http.Client{Timeout: 30 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) GetSignedURL(ctx context.Context) (*models.Credential, error) {
	var cred models.Credential
	if err := c.postJSON(ctx, signedURLPath, signedURLRequest{UploadType: UploadTypeAttachment}, &cred); err != nil {
		return nil, err
	}

	if cred.SignedURL == "" {
		return nil, fmt.Errorf("%w: empty signed_url", ErrInvalidCredential)
	}
	if _, ok := cred.ObjectKey(); !ok {
		return nil, fmt.Errorf("%w: url_fields has no %q", ErrInvalidCredential, models.ObjectKeyField)
	}

	return &cred, nil
}

func (c *HTTPClient) CreateAttachment(ctx context.Context, customerRef, filename, objectKey string) error {
	path := fmt.Sprintf(customerAttachments, customerRef)
	return c.postJSON(ctx, path, createAttachmentRequest{Filename: filename, S3Key: objectKey}, nil)
}

// postJSON posts in as JSON to path (relative to the base URL) and decodes
// the response into out when out is not nil.
func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s; body: %s", ErrUnexpectedStatus, req.Method, endpoint.Path, resp.Status, strings.TrimSpace(string(b)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
