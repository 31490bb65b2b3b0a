// Package preprocess shrinks oversized images before they are uploaded.
package preprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
	"github.com/dmitrijs2005/attachkeeper/internal/logging"
)

const (
	// DefaultMaxDimension is the largest width or height kept as is.
	DefaultMaxDimension = 3000
	DefaultConcurrency  = 2
)

// Result is the outcome for one file. File is always usable: on failure it
// is the original payload.
type Result struct {
	File    models.File
	Resized bool
	Err     error
}

type Preprocessor struct {
	maxDimension int
	concurrency  int
	filter       imaging.ResampleFilter
	logger       logging.Logger
}

type Option func(*Preprocessor)

func WithMaxDimension(px int) Option {
	return func(p *Preprocessor) {
		if px > 0 {
			p.maxDimension = px
		}
	}
}

func WithConcurrency(n int) Option {
	return func(p *Preprocessor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(p *Preprocessor) { p.logger = l }
}

func New(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		maxDimension: DefaultMaxDimension,
		concurrency:  DefaultConcurrency,
		filter:       imaging.Linear,
		logger:       logging.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes files with bounded concurrency and calls deliver once per
// file, from the worker goroutine, as soon as that file is done. Results
// arrive in completion order. Run returns when every file was delivered.
func (p *Preprocessor) Run(ctx context.Context, files []models.File, deliver func(index int, r Result)) {
	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			out, resized, err := p.Process(ctx, f)
			if err != nil && !errors.Is(err, ErrNotImage) {
				p.logger.Warn(ctx, "image preprocessing skipped", "file", f.Name, "error", err)
			}
			deliver(i, Result{File: out, Resized: resized, Err: err})
			return nil
		})
	}

	_ = g.Wait()
}

// Process returns f scaled down to fit the maximum dimension when f is an
// oversized image. Any other input, and any failure, yields f unchanged.
func (p *Preprocessor) Process(ctx context.Context, f models.File) (models.File, bool, error) {
	if err := ctx.Err(); err != nil {
		return f, false, err
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(f.Data).String()
	}
	if !strings.Contains(contentType, "image") {
		return f, false, ErrNotImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		return f, false, fmt.Errorf("decode config: %w", err)
	}

	width, height, ok := FitWithin(cfg.Width, cfg.Height, p.maxDimension)
	if !ok {
		return f, false, nil
	}

	format, err := formatFor(contentType, f.Name)
	if err != nil {
		return f, false, err
	}

	img, err := imaging.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return f, false, fmt.Errorf("decode: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return f, false, err
	}

	scaled := imaging.Resize(img, width, height, p.filter)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, format); err != nil {
		return f, false, fmt.Errorf("encode: %w", err)
	}

	return models.File{Name: f.Name, ContentType: f.ContentType, Data: buf.Bytes()}, true, nil
}

// FitWithin scales width x height uniformly by min(limit/width, limit/height)
// when either side exceeds limit. ok is false when no scaling is needed.
func FitWithin(width, height, limit int) (w, h int, ok bool) {
	if width <= limit && height <= limit {
		return width, height, false
	}
	ratio := math.Min(float64(limit)/float64(width), float64(limit)/float64(height))
	w = int(math.Max(1, math.Round(float64(width)*ratio)))
	h = int(math.Max(1, math.Round(float64(height)*ratio)))
	return w, h, true
}

func formatFor(contentType, name string) (imaging.Format, error) {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return imaging.JPEG, nil
	case "image/png":
		return imaging.PNG, nil
	case "image/gif":
		return imaging.GIF, nil
	case "image/tiff":
		return imaging.TIFF, nil
	case "image/bmp", "image/x-ms-bmp":
		return imaging.BMP, nil
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
	return format, nil
}
