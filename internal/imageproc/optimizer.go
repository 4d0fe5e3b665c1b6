package imageproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/leca/menudesk/internal/metrics"
	"github.com/leca/menudesk/internal/model"
	"github.com/leca/menudesk/internal/notify"
)

const (
	// MaxDimension bounds both output width and height.
	MaxDimension = 800
	// Quality is the lossy encoding quality on a 0-1 scale.
	Quality = 0.8
	// OutputContentType is the media type of every optimized asset.
	OutputContentType = "image/webp"
	// MaxSourcePixels caps the decoded size of a source image.
	MaxSourcePixels = 50_000_000

	outputExt = ".webp"
)

// Encoder writes img in the output format at the given 0-1 quality.
type Encoder interface {
	Encode(w io.Writer, img image.Image, quality float32) error
}

type webpEncoder struct{}

func (webpEncoder) Encode(w io.Writer, img image.Image, quality float32) error {
	return webp.Encode(w, img, &webp.Options{Quality: quality * 100})
}

// Optimizer shrinks user-supplied images to a bounded, compact WebP before
// they are uploaded. It never fails: when anything goes wrong the original
// asset is returned and a warning notice is raised.
type Optimizer struct {
	encoder  Encoder
	notifier notify.Notifier
	observer metrics.Observer
	logger   *slog.Logger
	buffers  *sync.Pool
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithEncoder replaces the WebP encoder.
func WithEncoder(e Encoder) Option {
	return func(o *Optimizer) { o.encoder = e }
}

// WithObserver records optimization outcomes.
func WithObserver(obs metrics.Observer) Option {
	return func(o *Optimizer) { o.observer = obs }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// New creates an Optimizer that reports fallbacks to n.
func New(n notify.Notifier, opts ...Option) *Optimizer {
	o := &Optimizer{
		encoder:  webpEncoder{},
		notifier: n,
		observer: metrics.Nop{},
		logger:   slog.Default(),
		buffers:  &sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.notifier == nil {
		o.notifier = notify.Discard{}
	}
	return o
}

// WithNotifier returns a copy of o that reports to n, for request-scoped
// notice collection.
func (o *Optimizer) WithNotifier(n notify.Notifier) *Optimizer {
	c := *o
	c.notifier = n
	return &c
}

// outcome is the result of one optimization attempt. Exactly one of asset
// and err is set.
type outcome struct {
	asset *model.Asset
	err   error
}

// Optimize returns a resized WebP copy of asset, or asset itself if it
// cannot be optimized.
func (o *Optimizer) Optimize(ctx context.Context, asset *model.Asset) *model.Asset {
	res := o.optimize(ctx, asset)
	if res.err != nil {
		o.observer.RecordOptimize(metrics.OutcomePassthrough)
		name := ""
		if asset != nil {
			name = asset.Name
		}
		o.logger.WarnContext(ctx, "image optimization skipped", "name", name, "error", res.err)
		o.notifier.Notify(ctx, noticeFor(res.err), notify.SeverityWarning)
		return asset
	}
	o.observer.RecordOptimize(metrics.OutcomeOptimized)
	return res.asset
}

func (o *Optimizer) optimize(ctx context.Context, asset *model.Asset) outcome {
	if asset == nil {
		return outcome{err: fmt.Errorf("%w: no asset", ErrUnsupportedAssetType)}
	}
	if !isImageType(asset.ContentType) {
		return outcome{err: fmt.Errorf("%w: %q", ErrUnsupportedAssetType, asset.ContentType)}
	}
	if err := ctx.Err(); err != nil {
		return outcome{err: err}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(asset.Data))
	if err != nil {
		return outcome{err: fmt.Errorf("%w: %v", ErrDecodeFailure, err)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return outcome{err: fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrDecodeFailure, cfg.Width, cfg.Height)}
	}

	src, err := imaging.Decode(bytes.NewReader(asset.Data), imaging.AutoOrientation(true))
	if err != nil {
		return outcome{err: fmt.Errorf("%w: %v", ErrDecodeFailure, err)}
	}

	bounds := src.Bounds()
	w, h := ScaledDimensions(bounds.Dx(), bounds.Dy(), MaxDimension)
	img := src
	if w != bounds.Dx() || h != bounds.Dy() {
		img = imaging.Resize(src, w, h, imaging.Lanczos)
	}

	if err := ctx.Err(); err != nil {
		return outcome{err: err}
	}

	buf := o.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer o.buffers.Put(buf)

	if err := o.encoder.Encode(buf, img, Quality); err != nil {
		return outcome{err: fmt.Errorf("%w: %v", ErrEncodeFailure, err)}
	}

	return outcome{asset: &model.Asset{
		Name:        asset.BaseName() + outputExt,
		ContentType: OutputContentType,
		Data:        bytes.Clone(buf.Bytes()),
	}}
}

// ScaledDimensions clamps the larger of w and h to bound, scaling the other
// proportionally. Images already within bound are returned unchanged.
func ScaledDimensions(w, h, bound int) (int, int) {
	if w <= bound && h <= bound {
		return w, h
	}
	if w >= h {
		nh := int(math.Round(float64(h) * float64(bound) / float64(w)))
		return bound, max(nh, 1)
	}
	nw := int(math.Round(float64(w) * float64(bound) / float64(h)))
	return max(nw, 1), bound
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedAssetType):
		return "File is not an image; it will be uploaded unchanged."
	case errors.Is(err, ErrDecodeFailure):
		return "Image could not be read for compression; the original file will be uploaded."
	case errors.Is(err, ErrEncodeFailure):
		return "Image could not be compressed; the original file will be uploaded."
	default:
		return "Image compression was interrupted; the original file will be uploaded."
	}
}
