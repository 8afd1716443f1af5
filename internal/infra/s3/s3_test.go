package s3

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		raw      string
		useSSL   bool
		endpoint string
		secure   bool
	}{
		{raw: "localhost:9000", useSSL: false, endpoint: "localhost:9000", secure: false},
		{raw: "localhost:9000", useSSL: true, endpoint: "localhost:9000", secure: true},
		{raw: "https://s3.example.com/", useSSL: false, endpoint: "s3.example.com", secure: true},
		{raw: " http://minio:9000 ", useSSL: true, endpoint: "minio:9000", secure: false},
	}

	for _, tc := range cases {
		endpoint, secure := normalizeEndpoint(tc.raw, tc.useSSL)
		if endpoint != tc.endpoint || secure != tc.secure {
			t.Fatalf("normalizeEndpoint(%q, %v) = %q, %v", tc.raw, tc.useSSL, endpoint, secure)
		}
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient(Config{Endpoint: "  "}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
