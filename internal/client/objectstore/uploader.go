// Package objectstore sends files to an S3-compatible store using presigned
// POST credentials.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
)

const (
	// FileField is the form field holding the payload.
	FileField = "file"
	// ACLField and PublicRead grant anonymous read on the stored object.
	ACLField   = "x-amz-acl"
	PublicRead = "public-read"
)

var (
	ErrUnavailable      = errors.New("object store unavailable")
	ErrUnexpectedStatus = errors.New("object store rejected upload")
)

type Uploader struct {
	http *http.Client
}

func NewUploader(c *http.Client) *Uploader {
	if c == nil {
		c = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Uploader{http: c}
}

// Upload posts f to cred.SignedURL as multipart/form-data. Any 2xx status is
// success; the response body is not inspected.
func (u *Uploader) Upload(ctx context.Context, f models.File, cred models.Credential) error {
	body, contentType, err := EncodeForm(f, cred.URLFields)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cred.SignedURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s; body: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(b)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// EncodeForm builds the presigned POST body: every credential field once,
// the public-read ACL field, then the file part.
func EncodeForm(f models.File, fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.WriteField(name, fields[name]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if _, ok := fields[ACLField]; !ok {
		if err := w.WriteField(ACLField, PublicRead); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", ACLField, err)
		}
	}

	// S3 ignores every field after the file part.
	part, err := w.CreatePart(filePartHeader(f))
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(f models.File) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FileField, quoteEscaper.Replace(f.Name)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return h
}
