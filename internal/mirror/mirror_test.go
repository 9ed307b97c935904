// SPDX-License-Identifier: MPL-2.0

package mirror

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func listServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRankSelectsFastestCandidate(t *testing.T) {
	srv := listServer(t, http.StatusOK, `{
		"code": 200, "msg": "ok", "total": 3, "update_time": "2026-08-01",
		"data": [
			{"url": "https://slow.example.com", "speed": 5},
			{"url": "https://fast.example.com", "speed": 9},
			{"url": "https://crawl.example.com", "speed": 2}
		]
	}`)

	best, err := NewClient(WithListURL(srv.URL)).Rank(context.Background())
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if best.URL != "https://fast.example.com" {
		t.Errorf("Rank picked %q, want the speed:9 candidate", best.URL)
	}
}

func TestRankStableOnTies(t *testing.T) {
	srv := listServer(t, http.StatusOK, `{
		"code": 200,
		"data": [
			{"url": "https://first.example.com", "speed": 9},
			{"url": "https://second.example.com", "speed": 9}
		]
	}`)

	best, err := NewClient(WithListURL(srv.URL)).Rank(context.Background())
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if best.URL != "https://first.example.com" {
		t.Errorf("tie should keep the first candidate, got %q", best.URL)
	}
}

func TestRankNoMirrorCases(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "empty data", status: http.StatusOK, body: `{"code": 200, "data": []}`},
		{name: "failing envelope", status: http.StatusOK, body: `{"code": 500, "msg": "down", "data": [{"url": "x", "speed": 1}]}`},
		{name: "http error", status: http.StatusBadGateway, body: ""},
		{name: "malformed payload", status: http.StatusOK, body: "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := listServer(t, tt.status, tt.body)
			_, err := NewClient(WithListURL(srv.URL)).Rank(context.Background())
			if !errors.Is(err, ErrNoMirror) {
				t.Errorf("Rank error = %v, want to wrap ErrNoMirror", err)
			}
		})
	}
}

func TestRankTransportFailure(t *testing.T) {
	srv := listServer(t, http.StatusOK, "")
	srv.Close()

	_, err := NewClient(WithListURL(srv.URL)).Rank(context.Background())
	if !errors.Is(err, ErrNoMirror) {
		t.Errorf("Rank error = %v, want to wrap ErrNoMirror", err)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Rank error = %v, want to wrap ErrNetwork", err)
	}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name     string
		mirror   string
		original string
		want     string
	}{
		{
			name:     "repository host is rewritten",
			mirror:   "https://mirror.example.com",
			original: "https://github.com/dev/mod/releases/download/v1/mod.zip",
			want:     "https://mirror.example.com/https://github.com/dev/mod/releases/download/v1/mod.zip",
		},
		{
			name:     "raw content host is rewritten",
			mirror:   "https://mirror.example.com",
			original: "https://raw.githubusercontent.com/dev/mod/main/module.prop",
			want:     "https://mirror.example.com/https://raw.githubusercontent.com/dev/mod/main/module.prop",
		},
		{
			name:     "other hosts pass through",
			mirror:   "https://mirror.example.com",
			original: "https://example.org/file.zip",
			want:     "https://example.org/file.zip",
		},
		{
			name:     "empty mirror passes through",
			mirror:   "",
			original: "https://github.com/dev/mod",
			want:     "https://github.com/dev/mod",
		},
		{
			name:     "trailing slash on mirror is trimmed",
			mirror:   "https://mirror.example.com/",
			original: "https://github.com/dev/mod",
			want:     "https://mirror.example.com/https://github.com/dev/mod",
		},
		{
			name:     "host match ignores case",
			mirror:   "https://mirror.example.com",
			original: "https://GitHub.com/dev/mod/releases/download/v1/mod.zip",
			want:     "https://mirror.example.com/https://GitHub.com/dev/mod/releases/download/v1/mod.zip",
		},
		{
			name:     "host match ignores explicit port",
			mirror:   "https://mirror.example.com",
			original: "https://github.com:443/dev/mod",
			want:     "https://mirror.example.com/https://github.com:443/dev/mod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rewrite(tt.mirror, tt.original); got != tt.want {
				t.Errorf("Rewrite(%q, %q) = %q, want %q", tt.mirror, tt.original, got, tt.want)
			}
		})
	}
}
