package media

import (
	"context"
	"errors"
	"testing"
	"time"
)

type presignerStub struct {
	bucket string
	key    string
	ttl    time.Duration
	err    error
}

func (s *presignerStub) PresignGet(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	s.bucket, s.key, s.ttl = bucket, key, ttl
	if s.err != nil {
		return "", s.err
	}
	return "https://signed.example/" + bucket + "/" + key, nil
}

func TestResolvePassesThroughHTTP(t *testing.T) {
	stub := &presignerStub{}
	r := NewResolver(stub, Config{DefaultBucket: "images"})

	got, err := r.Resolve(context.Background(), "https://cdn.example/cat.jpg")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "https://cdn.example/cat.jpg" || stub.key != "" {
		t.Fatalf("unexpected resolution %q presigned=%q", got, stub.key)
	}
}

func TestResolvePresignsObjectRefs(t *testing.T) {
	cases := []struct {
		ref    string
		bucket string
		key    string
	}{
		{ref: "s3://memes/2026/cat.jpg", bucket: "memes", key: "2026/cat.jpg"},
		{ref: "uploads/dog.png", bucket: "images", key: "uploads/dog.png"},
	}

	for _, tc := range cases {
		stub := &presignerStub{}
		r := NewResolver(stub, Config{DefaultBucket: "images", SignedURLTTL: time.Minute})

		got, err := r.Resolve(context.Background(), tc.ref)
		if err != nil {
			t.Fatalf("resolve %q: %v", tc.ref, err)
		}
		if stub.bucket != tc.bucket || stub.key != tc.key || stub.ttl != time.Minute {
			t.Fatalf("unexpected presign call for %q: %+v", tc.ref, stub)
		}
		if got != "https://signed.example/"+tc.bucket+"/"+tc.key {
			t.Fatalf("unexpected url %q", got)
		}
	}
}

func TestResolveRejectsBadRefs(t *testing.T) {
	r := NewResolver(&presignerStub{}, Config{})

	for _, ref := range []string{"", "ftp://host/file", "s3:///nokey", "bare-key-without-bucket"} {
		if _, err := r.Resolve(context.Background(), ref); !errors.Is(err, ErrInvalidRef) {
			t.Fatalf("expected ErrInvalidRef for %q, got %v", ref, err)
		}
	}
}

func TestResolvePropagatesPresignError(t *testing.T) {
	r := NewResolver(&presignerStub{err: errors.New("s3 down")}, Config{DefaultBucket: "images"})
	if _, err := r.Resolve(context.Background(), "k.jpg"); err == nil {
		t.Fatalf("expected presign error")
	}
}
