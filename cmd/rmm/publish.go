// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rmm-cli/internal/archive"
	"rmm-cli/internal/github"
	"rmm-cli/internal/issue"
	"rmm-cli/internal/mirror"
	"rmm-cli/pkg/rmmfile"
)

var (
	publishRepo string

	// publishCmd creates a GitHub release carrying the build artifacts
	publishCmd = &cobra.Command{
		Use:   "publish [dir]",
		Short: "Create a GitHub release with the build artifacts",
		Long: `Create a GitHub release with the build artifacts.

Uploads the flashable zip and the source tarball from the last 'rmm
build' as release assets, tagged v{version}-{version_code}. The target
repository comes from --repo or the manifest's urls table. When the
proxy section of Rmake.toml is enabled, mirror download links are
included in the release notes; mirror failures never block the
release.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPublishCmd,
	}
)

func init() {
	publishCmd.Flags().StringVar(&publishRepo, "repo", "", "GitHub repository URL (default: urls.github in rmmproject.toml)")
}

func runPublishCmd(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	desc, err := rmmfile.LoadProject(root)
	if err != nil {
		return err
	}
	spec, err := rmmfile.LoadBuildSpec(root)
	if err != nil {
		return err
	}

	artifacts, err := locateArtifacts(root, spec, desc)
	if err != nil {
		return err
	}

	repoURL := publishRepo
	if repoURL == "" {
		repoURL = desc.URLs["github"]
	}
	if repoURL == "" {
		repoURL = desc.URLs["repo"]
	}
	if repoURL == "" {
		return issue.NewErrorContext().
			WithOperation("resolve release repository").
			WithSuggestion("Pass --repo or add urls.github to rmmproject.toml").
			BuildError()
	}
	owner, repo, err := github.SplitRepoURL(repoURL)
	if err != nil {
		return err
	}

	_, reg, err := openRegistry()
	if err != nil {
		return err
	}
	publisher, err := github.NewPublisher(cmd.Context(), reg)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("authenticate with GitHub").
			WithSuggestion("Run 'rmm config set token <personal-access-token>'").
			WithSuggestion("Or export RMM_TOKEN").
			Wrap(err).
			BuildError()
	}

	mirrorURL := selectMirror(cmd.Context(), spec)

	info, err := publisher.Publish(cmd.Context(), owner, repo, desc, artifacts, mirrorURL)
	if err != nil {
		return err
	}

	fmt.Printf("%s Released %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(info.Tag))
	fmt.Printf("  %s\n", info.HTMLURL)
	for _, u := range info.MirrorURLs {
		fmt.Printf("  mirror: %s\n", u)
	}
	return nil
}

// locateArtifacts resolves the artifact paths the last build produced.
func locateArtifacts(root string, spec *rmmfile.BuildSpec, desc *rmmfile.ProjectDescriptor) (*archive.Artifacts, error) {
	outDir := archive.NewAssembler(root, spec, desc).OutputDir()

	zipName, err := archive.RenderName(spec.Package.ZipName, desc)
	if err != nil {
		return nil, err
	}
	sourceName, err := archive.RenderName(spec.SourcePackage.NameTemplate, desc)
	if err != nil {
		return nil, err
	}

	artifacts := &archive.Artifacts{
		Zip:    filepath.Join(outDir, zipName),
		Source: filepath.Join(outDir, sourceName),
	}
	for _, path := range []string{artifacts.Zip, artifacts.Source} {
		if _, err := os.Stat(path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("locate build artifact").
				WithResource(path).
				WithSuggestion("Run 'rmm build' first").
				Wrap(err).
				BuildError()
		}
	}
	return artifacts, nil
}

// selectMirror picks a mirror base URL per the proxy settings. Any failure
// degrades to no mirror.
func selectMirror(ctx context.Context, spec *rmmfile.BuildSpec) string {
	if !spec.Proxy.Enabled {
		return ""
	}
	if spec.Proxy.CustomProxy != "" && !spec.Proxy.AutoSelect {
		return spec.Proxy.CustomProxy
	}

	candidate, err := mirror.NewClient().Rank(ctx)
	if err != nil {
		if errors.Is(err, mirror.ErrNoMirror) {
			fmt.Println(WarningStyle.Render("!") + " no usable mirror, releasing with direct links only")
		}
		return ""
	}
	return candidate.URL
}
