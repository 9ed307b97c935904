// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"rmm-cli/internal/archive"
	"rmm-cli/internal/config"
	"rmm-cli/internal/issue"
	"rmm-cli/internal/mirror"
	"rmm-cli/internal/runner"
	"rmm-cli/pkg/rmmfile"
)

// issueFor maps a failure to its issue catalog entry. Zero means no entry
// applies; the caller prints nothing extra.
func issueFor(err error) issue.Id {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, config.ErrTokenMissing):
		return issue.TokenMissingId
	case errors.Is(err, config.ErrRegistryLoad):
		return issue.RegistryLoadFailedId
	case errors.Is(err, archive.ErrUnresolvedPlaceholder):
		return issue.UnresolvedPlaceholderId
	case errors.Is(err, mirror.ErrNoMirror):
		return issue.MirrorUnavailableId
	case errors.Is(err, runner.ErrExternalProcess):
		return issue.HookFailedId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	// A missing manifest is "no project here"; any other manifest failure
	// is a parse problem.
	case errors.Is(err, rmmfile.ErrConfig) && errors.Is(err, fs.ErrNotExist):
		return issue.ProjectNotFoundId
	case errors.Is(err, rmmfile.ErrConfig) || errors.Is(err, rmmfile.ErrInvalidVersionCode):
		return issue.ManifestParseErrorId
	default:
		return 0
	}
}

// printErrorGuidance supplements the error line fang already printed:
// actionable suggestions, the verbose error chain, and the matching issue
// catalog entry rendered as markdown.
func printErrorGuidance(w io.Writer, err error) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.HasSuggestions() {
		for _, suggestion := range ae.Suggestions {
			fmt.Fprintln(w, SubtitleStyle.Render("  • "+suggestion))
		}
	}
	if verbose {
		fmt.Fprintln(w, formatErrorForDisplay(err, true))
	}
	printIssueGuidance(w, issueFor(err))
}

// printIssueGuidance renders one catalog entry to w. Render failures are
// logged, never fatal.
func printIssueGuidance(w io.Writer, id issue.Id) {
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render("dark")
	if err != nil {
		log.Warn("failed to render issue guidance", "issue", int(id), "err", err)
		return
	}
	fmt.Fprint(w, rendered)
}
