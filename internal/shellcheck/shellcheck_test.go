// SPDX-License-Identifier: MPL-2.0

package shellcheck

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newProjectWithScripts(t *testing.T, scripts ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range scripts {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("#!/bin/sh\necho ok\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func stubGate(lookErr error, output []byte, runErr error) *Gate {
	g := NewGate()
	g.lookPath = func(string) (string, error) {
		if lookErr != nil {
			return "", lookErr
		}
		return "/usr/bin/shellcheck", nil
	}
	g.runChecker = func(context.Context, string, string, []string) ([]byte, error) {
		return output, runErr
	}
	return g
}

func TestCheckAbsentBinarySkipsAsSuccess(t *testing.T) {
	root := newProjectWithScripts(t, "service.sh")
	g := stubGate(errors.New("not found"), nil, nil)

	report, err := g.Check(context.Background(), root)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.Skipped {
		t.Error("report.Skipped = false, want true")
	}
	if !report.AllPassed {
		t.Error("absent checker must report all_passed=true")
	}
	if g.Enforce(report, PolicyBlocking) != nil {
		t.Error("skip-as-success must not block a build")
	}
}

func TestCheckCleanOutput(t *testing.T) {
	root := newProjectWithScripts(t, "service.sh", "scripts/setup.sh")
	g := stubGate(nil, []byte("[]"), nil)

	report, err := g.Check(context.Background(), root)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.AllPassed {
		t.Error("clean output should pass")
	}
	if len(report.CheckedFiles) != 2 {
		t.Errorf("CheckedFiles = %v, want 2 scripts", report.CheckedFiles)
	}
}

func TestCheckParsesFindings(t *testing.T) {
	root := newProjectWithScripts(t, "bad.sh")
	out := `[{"file":"bad.sh","line":2,"column":6,"level":"warning","code":2086,"message":"Double quote to prevent globbing"}]`
	g := stubGate(nil, []byte(out), errors.New("exit status 1"))

	report, err := g.Check(context.Background(), root)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.AllPassed {
		t.Error("findings should clear all_passed")
	}
	if report.Counts["warning"] != 1 {
		t.Errorf("Counts = %v, want one warning", report.Counts)
	}
}

func TestCheckSkipsWorkDirScripts(t *testing.T) {
	root := newProjectWithScripts(t, "ok.sh", ".rmmp/build/inner.sh")
	g := stubGate(nil, []byte("[]"), nil)

	report, err := g.Check(context.Background(), root)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(report.CheckedFiles) != 1 || report.CheckedFiles[0] != "ok.sh" {
		t.Errorf("CheckedFiles = %v, want [ok.sh]", report.CheckedFiles)
	}
}

func TestCheckCollectsShebangScripts(t *testing.T) {
	root := newProjectWithScripts(t, "customize.sh")
	writeRaw := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeRaw("post-fs-data", "#!/system/bin/sh\necho ok\n")
	writeRaw("notes.txt", "#!/bin/sh in a text file\n")
	writeRaw("tool", "#!/usr/bin/env python\nprint()\n")

	g := stubGate(nil, []byte("[]"), nil)
	report, err := g.Check(context.Background(), root)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := map[string]bool{"customize.sh": true, "post-fs-data": true}
	if len(report.CheckedFiles) != len(want) {
		t.Fatalf("CheckedFiles = %v, want %v", report.CheckedFiles, want)
	}
	for _, f := range report.CheckedFiles {
		if !want[f] {
			t.Errorf("unexpected script collected: %s", f)
		}
	}
}

func TestEvaluateDecodeNoise(t *testing.T) {
	noise := []byte("warning: something chatty\n[]")

	t.Run("advisory downgrades to a skip", func(t *testing.T) {
		root := newProjectWithScripts(t, "service.sh")
		g := stubGate(nil, noise, nil)

		report, err := g.Evaluate(context.Background(), root, PolicyAdvisory)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if !report.Skipped || !report.AllPassed {
			t.Errorf("report = %+v, want skipped pass", report)
		}
	})

	t.Run("blocking still fails", func(t *testing.T) {
		root := newProjectWithScripts(t, "service.sh")
		g := stubGate(nil, noise, nil)

		if _, err := g.Evaluate(context.Background(), root, PolicyBlocking); !errors.Is(err, ErrOutputDecode) {
			t.Errorf("Evaluate error = %v, want ErrOutputDecode", err)
		}
	})
}

func TestEvaluateEnforcesPolicy(t *testing.T) {
	out := `[{"file":"bad.sh","line":1,"column":1,"level":"error","code":2148,"message":"Tips depend on target shell"}]`
	root := newProjectWithScripts(t, "bad.sh")
	g := stubGate(nil, []byte(out), errors.New("exit status 1"))

	report, err := g.Evaluate(context.Background(), root, PolicyBlocking)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Evaluate error = %v, want ErrValidation", err)
	}
	if report == nil || len(report.Findings) != 1 {
		t.Errorf("report = %+v, want the findings alongside the error", report)
	}
}

func TestEnforcePolicies(t *testing.T) {
	dirty := &Report{Findings: []Finding{{Level: "error"}}, AllPassed: false}
	clean := &Report{AllPassed: true}
	g := NewGate()

	tests := []struct {
		name    string
		report  *Report
		policy  Policy
		wantErr bool
	}{
		{name: "blocking fails on findings", report: dirty, policy: PolicyBlocking, wantErr: true},
		{name: "advisory warns only", report: dirty, policy: PolicyAdvisory},
		{name: "skip bypasses the gate", report: dirty, policy: PolicySkip},
		{name: "blocking passes when clean", report: clean, policy: PolicyBlocking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Enforce(tt.report, tt.policy)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("Enforce error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Enforce: %v", err)
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	root := t.TempDir()
	report := &Report{
		CheckedFiles: []string{"a.sh"},
		Findings:     []Finding{},
		Counts:       map[string]int{},
		AllPassed:    true,
	}

	if err := WriteReport(root, report); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, ".rmmp", ReportFile))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var loaded Report
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if !loaded.AllPassed {
		t.Error("round-tripped report lost all_passed")
	}
}
