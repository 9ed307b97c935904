// SPDX-License-Identifier: MPL-2.0

// Package github publishes built artifacts as GitHub releases.
//
// The release is created on the repository named by the project manifest's
// urls.github entry, tagged with the version_code, and the two archives are
// uploaded as assets. When a mirror is available the release notes carry
// mirror-accelerated download links next to the direct ones.
package github

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"rmm-cli/internal/archive"
	"rmm-cli/internal/config"
	"rmm-cli/internal/mirror"
	"rmm-cli/pkg/rmmfile"
)

type (
	// Publisher creates releases and uploads artifacts.
	Publisher struct {
		client *github.Client
		logger *log.Logger
	}

	// ReleaseInfo describes a published release.
	ReleaseInfo struct {
		Tag     string
		HTMLURL string
		// AssetURLs are the direct download links, in upload order.
		AssetURLs []string
		// MirrorURLs are the mirror-accelerated variants of AssetURLs.
		// Empty when no mirror was available.
		MirrorURLs []string
	}
)

// NewPublisher builds a Publisher from the registry token. A missing token
// is a configuration failure: publishing is the one operation that cannot
// degrade.
func NewPublisher(ctx context.Context, reg *config.Registry) (*Publisher, error) {
	if reg.Token == "" {
		return nil, config.ErrTokenMissing
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: reg.Token})
	tc := oauth2.NewClient(ctx, ts)

	return &Publisher{
		client: github.NewClient(tc),
		logger: log.WithPrefix("publish"),
	}, nil
}

// SplitRepoURL extracts owner and repo from a github.com project URL.
func SplitRepoURL(raw string) (owner, repo string, err error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid repository URL %q: %w", raw, err)
	}
	if parsed.Host != "github.com" {
		return "", "", fmt.Errorf("repository URL %q is not on github.com", raw)
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository URL %q has no owner/repo path", raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Publish creates a release for the built artifacts and uploads both
// archives. mirrorURL may be empty; it only affects the generated notes.
func (p *Publisher) Publish(ctx context.Context, owner, repo string, desc *rmmfile.ProjectDescriptor, artifacts *archive.Artifacts, mirrorURL string) (*ReleaseInfo, error) {
	tag := fmt.Sprintf("v%s-%s", desc.Version, desc.VersionCode)
	name := fmt.Sprintf("%s %s (%s)", desc.ID, desc.Version, desc.VersionCode)

	release, _, err := p.client.Repositories.CreateRelease(ctx, owner, repo, &github.RepositoryRelease{
		TagName: github.String(tag),
		Name:    github.String(name),
		Body:    github.String(fmt.Sprintf("Automated release of %s, version code %s.", desc.ID, desc.VersionCode)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create release: %w", err)
	}
	p.logger.Info("release created", "tag", tag, "url", release.GetHTMLURL())

	info := &ReleaseInfo{Tag: tag, HTMLURL: release.GetHTMLURL()}
	for _, path := range []string{artifacts.Zip, artifacts.Source} {
		assetURL, err := p.uploadAsset(ctx, owner, repo, release.GetID(), path)
		if err != nil {
			return nil, err
		}
		info.AssetURLs = append(info.AssetURLs, assetURL)
	}

	if mirrorURL != "" {
		for _, direct := range info.AssetURLs {
			if rewritten := mirror.Rewrite(mirrorURL, direct); rewritten != direct {
				info.MirrorURLs = append(info.MirrorURLs, rewritten)
			}
		}
	}
	return info, nil
}

func (p *Publisher) uploadAsset(ctx context.Context, owner, repo string, releaseID int64, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer f.Close()

	asset, _, err := p.client.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID,
		&github.UploadOptions{Name: filepath.Base(path)}, f)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset %s: %w", filepath.Base(path), err)
	}
	p.logger.Info("asset uploaded", "name", filepath.Base(path))
	return asset.GetBrowserDownloadURL(), nil
}
