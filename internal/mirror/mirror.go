// SPDX-License-Identifier: MPL-2.0

// Package mirror ranks download mirrors for the repository hosts.
//
// A single GET against a list service returns scored candidates inside a
// status envelope. Every failure mode, transport error, non-success
// envelope, or an empty candidate list, degrades to "no mirror": callers
// fall back to direct access and the overall command never fails because of
// this package.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultListURL is the mirror list service endpoint.
	DefaultListURL = "https://api.akams.cn/github"

	// defaultTimeout bounds the single list request. There is no retry and
	// no background refresh.
	defaultTimeout = 10 * time.Second

	// envelopeSuccessCode marks a usable response.
	envelopeSuccessCode = 200

	// maxResponseBytes caps the list payload size.
	maxResponseBytes = 4 << 20
)

var (
	// ErrNetwork is the sentinel error wrapped by NetworkError.
	ErrNetwork = errors.New("network error")
	// ErrNoMirror is returned when ranking produced no usable candidate.
	// Callers degrade to direct access.
	ErrNoMirror = errors.New("no mirror available")
)

// rewriteHosts is the fixed allow-list of origins eligible for mirror
// prefixing. Any other URL passes through unchanged.
var rewriteHosts = map[string]bool{
	"github.com":                true,
	"raw.githubusercontent.com": true,
}

type (
	// NetworkError reports a failed or unusable list fetch. Recoverable:
	// it wraps ErrNoMirror so callers can treat both identically.
	NetworkError struct {
		Err error
	}

	// Candidate is one scored mirror. Ephemeral: fetched per call, never
	// persisted, and its measurements are trusted as reported.
	Candidate struct {
		URL      string  `json:"url"`
		Server   string  `json:"server"`
		IP       string  `json:"ip"`
		Location string  `json:"location"`
		Latency  float64 `json:"latency"`
		Speed    float64 `json:"speed"`
	}

	// envelope is the list service's wire format.
	envelope struct {
		Code       int         `json:"code"`
		Msg        string      `json:"msg"`
		Data       []Candidate `json:"data"`
		Total      int         `json:"total"`
		UpdateTime string      `json:"update_time"`
	}

	// Client fetches and ranks mirror candidates.
	Client struct {
		httpClient *http.Client
		listURL    string // overridable for tests
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

func (e *NetworkError) Error() string {
	return fmt.Sprintf("mirror lookup failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, ErrNoMirror, e.Err} }

// WithHTTPClient sets a custom HTTP client, useful for tests or proxies.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(m *Client) {
		m.httpClient = c
	}
}

// WithListURL overrides the list service endpoint, primarily for test servers.
func WithListURL(u string) ClientOption {
	return func(m *Client) {
		m.listURL = strings.TrimRight(u, "/")
	}
}

// WithUserAgent sets the User-Agent header sent with the list request.
func WithUserAgent(ua string) ClientOption {
	return func(m *Client) {
		m.userAgent = ua
	}
}

// NewClient creates a Client with defaults: the public list service, a
// bounded-timeout HTTP client, and an rmm User-Agent.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		listURL:    DefaultListURL,
		userAgent:  "rmm/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rank fetches the candidate list and returns the fastest mirror. The sort
// is stable and descending by reported speed, so the first of tied
// candidates wins. Any failure returns an error wrapping ErrNoMirror.
func (c *Client) Rank(ctx context.Context) (*Candidate, error) {
	candidates, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, &NetworkError{Err: errors.New("list service returned no candidates")}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Speed > candidates[j].Speed
	})
	return &candidates[0], nil
}

func (c *Client) fetch(ctx context.Context) ([]Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Err: fmt.Errorf("list service returned HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &NetworkError{Err: err}
	}
	if env.Code != envelopeSuccessCode {
		return nil, &NetworkError{Err: fmt.Errorf("list service envelope code %d: %s", env.Code, env.Msg)}
	}
	return env.Data, nil
}

// Rewrite prefixes original with the mirror when, and only when, the
// original's host is on the allow-list. The host is compared without
// port and case-insensitively. Everything else is returned unchanged,
// including URLs that fail to parse.
func Rewrite(mirror, original string) string {
	if mirror == "" {
		return original
	}
	parsed, err := url.Parse(original)
	if err != nil || !rewriteHosts[strings.ToLower(parsed.Hostname())] {
		return original
	}
	return strings.TrimRight(mirror, "/") + "/" + original
}
