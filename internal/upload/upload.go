// Package upload stores user-supplied assets in the object store under a
// namespace and returns their public references.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leca/menudesk/internal/imageproc"
	"github.com/leca/menudesk/internal/metrics"
	"github.com/leca/menudesk/internal/model"
	"github.com/leca/menudesk/internal/notify"
	"github.com/leca/menudesk/internal/storage"
)

// Well-known namespaces used by the editor.
const (
	NamespaceRestaurants = "restaurants"
	NamespacePaymentQR   = "payment-qr"
	NamespaceMenuItems   = "menu-items"
)

// DefaultCacheControl is the cache lifetime, in seconds, applied to uploads.
const DefaultCacheControl = "3600"

var (
	// ErrRemoteWrite is wrapped by every failed upload.
	ErrRemoteWrite = errors.New("remote write failure")
	// ErrInvalidNamespace is returned for namespaces that are not lowercase
	// slash-separated segments.
	ErrInvalidNamespace = errors.New("invalid namespace")
	// ErrEmptyAsset is returned when there is nothing to upload.
	ErrEmptyAsset = errors.New("empty asset")
)

var segmentRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Error describes a failed upload. It wraps both ErrRemoteWrite and the
// underlying cause.
type Error struct {
	Namespace string
	Path      string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload %s: %v: %v", e.Path, ErrRemoteWrite, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrRemoteWrite, e.Err}
}

// Service uploads assets to an ObjectStore.
type Service struct {
	store        storage.ObjectStore
	optimizer    *imageproc.Optimizer
	observer     metrics.Observer
	logger       *slog.Logger
	cacheControl string
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCacheControl overrides the cache directive sent with each object.
func WithCacheControl(cc string) Option {
	return func(s *Service) {
		if cc != "" {
			s.cacheControl = cc
		}
	}
}

// WithObserver records upload latency, size and failures.
func WithObserver(obs metrics.Observer) Option {
	return func(s *Service) { s.observer = obs }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service writing to store. optimizer is used by
// OptimizeAndUpload and may be nil when only raw uploads are needed.
func New(store storage.ObjectStore, optimizer *imageproc.Optimizer, opts ...Option) *Service {
	s := &Service{
		store:        store,
		optimizer:    optimizer,
		observer:     metrics.Nop{},
		logger:       slog.Default(),
		cacheControl: DefaultCacheControl,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores asset under namespace with a fresh random name and returns
// its public reference. Each call writes a new object; there is no retry.
func (s *Service) Upload(ctx context.Context, asset *model.Asset, namespace string) (*model.UploadedReference, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if asset == nil || len(asset.Data) == 0 {
		return nil, ErrEmptyAsset
	}

	p := namespace + "/" + FileName(asset)
	start := s.now()
	n, err := s.store.Write(ctx, p, bytes.NewReader(asset.Data), storage.WriteOptions{
		ContentType:  asset.ContentType,
		CacheControl: s.cacheControl,
		Overwrite:    true,
	})
	if err != nil {
		uerr := &Error{Namespace: namespace, Path: p, Err: err}
		s.observer.RecordUpload(namespace, s.now().Sub(start), asset.Size(), uerr)
		s.logger.ErrorContext(ctx, "upload asset", "namespace", namespace, "path", p, "error", err)
		return nil, uerr
	}
	s.observer.RecordUpload(namespace, s.now().Sub(start), int(n), nil)

	return &model.UploadedReference{
		URL:         s.store.PublicURL(p),
		Path:        p,
		ContentType: asset.ContentType,
		Size:        int(n),
		Uploaded:    s.now().UTC(),
	}, nil
}

// OptimizeAndUpload optimizes asset before uploading it. Optimizer notices
// go to the request's collector when the context carries one.
func (s *Service) OptimizeAndUpload(ctx context.Context, asset *model.Asset, namespace string) (*model.UploadedReference, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if s.optimizer != nil {
		opt := s.optimizer
		if c := notify.CollectorFrom(ctx); c != nil {
			opt = opt.WithNotifier(c)
		}
		asset = opt.Optimize(ctx, asset)
	}
	return s.Upload(ctx, asset, namespace)
}

// ValidateNamespace checks that ns is one or more lowercase segments of
// letters, digits, '-' or '_' separated by '/'.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNamespace)
	}
	for _, seg := range strings.Split(ns, "/") {
		if !segmentRe.MatchString(seg) {
			return fmt.Errorf("%w: %q", ErrInvalidNamespace, ns)
		}
	}
	return nil
}

// FileName returns a fresh random object name that keeps the asset's
// extension, falling back to one derived from its content type.
func FileName(asset *model.Asset) string {
	ext := asset.Ext()
	if ext == "" {
		ext = imageproc.Extension(asset.ContentType)
	}
	return uuid.NewString() + ext
}
