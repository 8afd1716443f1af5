package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const defaultSignedURLTTL = 30 * time.Minute

var ErrInvalidRef = errors.New("invalid image reference")

type Presigner interface {
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

type Config struct {
	DefaultBucket string
	SignedURLTTL  time.Duration
}

// Resolver turns stored image references into URLs a browser can load.
// Absolute http(s) URLs pass through; s3://bucket/key and bare object keys are
// presigned.
type Resolver struct {
	presigner Presigner
	cfg       Config
}

func NewResolver(presigner Presigner, cfg Config) *Resolver {
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = defaultSignedURLTTL
	}
	return &Resolver{presigner: presigner, cfg: cfg}
}

func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidRef
	}

	bucket, key, external, err := ParseRef(ref, r.cfg.DefaultBucket)
	if err != nil {
		return "", err
	}
	if external {
		return ref, nil
	}
	if r.presigner == nil {
		return "", fmt.Errorf("resolve %q: object storage is not configured", ref)
	}

	signed, err := r.presigner.PresignGet(ctx, bucket, key, r.cfg.SignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", ref, err)
	}
	return signed, nil
}

// ParseRef splits an image reference. external is true for http(s) URLs.
func ParseRef(ref, defaultBucket string) (bucket, key string, external bool, err error) {
	u, parseErr := url.Parse(ref)
	if parseErr != nil {
		return "", "", false, fmt.Errorf("%w: %v", ErrInvalidRef, parseErr)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return "", "", false, ErrInvalidRef
		}
		return "", "", true, nil
	case "s3":
		bucket = u.Host
		key = strings.TrimPrefix(u.Path, "/")
	case "":
		bucket = defaultBucket
		key = strings.TrimPrefix(ref, "/")
	default:
		return "", "", false, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRef, u.Scheme)
	}

	if bucket == "" || key == "" {
		return "", "", false, ErrInvalidRef
	}
	return bucket, key, false, nil
}
