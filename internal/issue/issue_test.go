// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	// Verify all IDs are unique and sequential
	ids := []Id{
		ProjectNotFoundId,
		ManifestParseErrorId,
		RegistryLoadFailedId,
		ShellcheckNotFoundId,
		ShellNotFoundId,
		HookFailedId,
		UnresolvedPlaceholderId,
		MirrorUnavailableId,
		TokenMissingId,
		PermissionDeniedId,
	}

	seen := make(map[Id]bool)
	for i, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID value: %d", id)
		}
		seen[id] = true

		if int(id) != i+1 {
			t.Errorf("ID at position %d = %d, want %d", i, id, i+1)
		}
	}

	if ProjectNotFoundId != 1 {
		t.Errorf("ProjectNotFoundId = %d, want 1", ProjectNotFoundId)
	}
}

func TestIssue_Id(t *testing.T) {
	issue := Get(ProjectNotFoundId)
	if issue == nil {
		t.Fatal("Get(ProjectNotFoundId) returned nil")
	}

	if issue.Id() != ProjectNotFoundId {
		t.Errorf("issue.Id() = %d, want %d", issue.Id(), ProjectNotFoundId)
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	issue := Get(ProjectNotFoundId)
	if issue == nil {
		t.Fatal("Get(ProjectNotFoundId) returned nil")
	}

	msg := issue.MarkdownMsg()
	if msg == "" {
		t.Error("MarkdownMsg() returned empty string")
	}

	if !strings.Contains(string(msg), "No rmm project found") {
		t.Error("MarkdownMsg() should contain 'No rmm project found'")
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ProjectNotFoundId, false, "No rmm project found"},
		{ManifestParseErrorId, false, "Manifest parse error"},
		{RegistryLoadFailedId, false, "Registry load failed"},
		{ShellcheckNotFoundId, false, "shellcheck not found"},
		{ShellNotFoundId, false, "Shell not found"},
		{HookFailedId, false, "Hook failed"},
		{UnresolvedPlaceholderId, false, "Unresolved archive name placeholder"},
		{MirrorUnavailableId, false, "No mirror available"},
		{TokenMissingId, false, "Access token missing"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}

			if tt.contains != "" && !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain '%s'", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) == 0 {
		t.Fatal("Values() returned empty slice")
	}

	expectedCount := 10

	if len(issues) != expectedCount {
		t.Errorf("Values() returned %d issues, want %d", len(issues), expectedCount)
	}

	for _, issue := range issues {
		if issue.Id() == 0 {
			t.Error("found issue with ID 0")
		}
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	// Swap the renderer so the test does not depend on terminal styling.
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, stylePath string) (string, error) {
		return in, nil
	}

	testIssue := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue\n\nThis is a test.",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	if !strings.Contains(rendered, "See also") {
		t.Error("Render() output should contain the links section")
	}
	if !strings.Contains(rendered, "https://docs.example.com") {
		t.Error("Render() output should contain the doc link")
	}
	if !strings.Contains(rendered, "https://external.example.com") {
		t.Error("Render() output should contain the external link")
	}
}

func TestIssue_DocLinks_Clone(t *testing.T) {
	testIssue := &Issue{
		id:       Id(9998),
		mdMsg:    "x",
		docLinks: []HttpLink{"https://docs.example.com"},
	}

	links := testIssue.DocLinks()
	links[0] = "modified"
	if testIssue.DocLinks()[0] != "https://docs.example.com" {
		t.Error("DocLinks() should return a clone")
	}
}
