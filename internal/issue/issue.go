// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ProjectNotFoundId Id = iota + 1
	ManifestParseErrorId
	RegistryLoadFailedId
	ShellcheckNotFoundId
	ShellNotFoundId
	HookFailedId
	UnresolvedPlaceholderId
	MirrorUnavailableId
	TokenMissingId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# No rmm project found!

We searched for an rmmproject.toml but the current directory does not contain one.

## Things you can try:
- Initialize a project here:
~~~
$ rmm init
~~~

- Or run the command from an existing project:
~~~
$ cd /path/to/your/module
$ rmm build
~~~

- Or list every project the registry knows about:
~~~
$ rmm sync --projects-only
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Manifest parse error!

A project manifest (rmmproject.toml or .rmmp/Rmake.toml) could not be decoded.

## Common causes:
- Invalid TOML syntax (unbalanced quotes, missing brackets)
- A version_code that is not a base-10 integer string
- An unknown compression method in [package]

## Things you can try:
- Check the reported line and field path
- Compare against a freshly generated manifest:
~~~
$ rmm init --help
~~~`,
	}

	registryLoadFailedIssue = &Issue{
		id: RegistryLoadFailedId,
		mdMsg: `
# Registry load failed!

The global registry (meta.toml) could not be read.

## Search locations:
1. $RMM_ROOT/meta.toml, if RMM_ROOT is set
2. ~/data/adb/.rmm/meta.toml

## Things you can try:
- Run a sync to recreate the registry:
~~~
$ rmm sync .
~~~
- Check permissions on the RMM root directory
- Unset RMM_ROOT if it points somewhere stale`,
	}

	shellcheckNotFoundIssue = &Issue{
		id: ShellcheckNotFoundId,
		mdMsg: `
# shellcheck not found!

The external shell-syntax checker is not on your PATH. Validation was skipped,
which never blocks a build, but your scripts went unchecked.

## Install it:
- Debian/Ubuntu:
~~~
$ sudo apt install shellcheck
~~~
- macOS:
~~~
$ brew install shellcheck
~~~
- Windows:
~~~
$ scoop install shellcheck
~~~`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

Could not find a host shell to run hooks or scripts.

## Shells we look for:
- Linux/macOS: sh
- Windows: powershell

## Things you can try:
- Install a POSIX shell
- Rely on the built-in interpreter, which rmm falls back to automatically
  for simple hook command lines`,
	}

	hookFailedIssue = &Issue{
		id: HookFailedId,
		mdMsg: `
# Hook failed!

A pre_build/post_build hook or project script exited non-zero. The build
stops and rmm exits with the hook's own exit code.

## Things you can try:
- Run the failing command line by hand from the project root
- Check the hook lists in .rmmp/Rmake.toml:
~~~toml
[build]
pre_build  = ["./gen.sh"]
post_build = []
~~~`,
	}

	unresolvedPlaceholderIssue = &Issue{
		id: UnresolvedPlaceholderId,
		mdMsg: `
# Unresolved archive name placeholder!

An artifact name template still contains a {placeholder} after substitution.
Nothing was written.

## Supported placeholders:
- {id}, {version}, {version_code}

## Things you can try:
- Fix zip_name / name_template in .rmmp/Rmake.toml:
~~~toml
[package]
zip_name = "{id}-{version_code}.zip"
~~~`,
	}

	mirrorUnavailableIssue = &Issue{
		id: MirrorUnavailableId,
		mdMsg: `
# No mirror available!

The mirror list service returned no usable candidates. Downloads fall back
to direct, unproxied access.

## Things you can try:
- Retry later; the list service refreshes its measurements periodically
- Pin a mirror yourself in .rmmp/Rmake.toml:
~~~toml
[proxy]
enabled      = true
auto_select  = false
custom_proxy = "https://mirror.example.com"
~~~`,
	}

	tokenMissingIssue = &Issue{
		id: TokenMissingId,
		mdMsg: `
# Access token missing!

Publishing needs a GitHub token in the registry and none is configured.

## Things you can try:
- Store a token:
~~~
$ rmm config set token <your-token>
~~~
- Create a fine-grained token with 'contents: write' on the target repo`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The RMM root or a project directory is not writable
- A scanned root belongs to another user

## Things you can try:
- Check file/directory permissions
- Point RMM_ROOT at a directory you own
- Unreadable scan roots are skipped with a warning; fix the permissions to
  have them scanned again`,
	}

	issues = map[Id]*Issue{
		projectNotFoundIssue.Id():       projectNotFoundIssue,
		manifestParseErrorIssue.Id():    manifestParseErrorIssue,
		registryLoadFailedIssue.Id():    registryLoadFailedIssue,
		shellcheckNotFoundIssue.Id():    shellcheckNotFoundIssue,
		shellNotFoundIssue.Id():         shellNotFoundIssue,
		hookFailedIssue.Id():            hookFailedIssue,
		unresolvedPlaceholderIssue.Id(): unresolvedPlaceholderIssue,
		mirrorUnavailableIssue.Id():     mirrorUnavailableIssue,
		tokenMissingIssue.Id():          tokenMissingIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
