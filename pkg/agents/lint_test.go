// SPDX-License-Identifier: Apache-2.0
package agents

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRepoScanProvider(t *testing.T) {
	dir := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	write("main.go", "package main\n// TODO: wire flags\n// FIXME: handle error\n")
	write("script.py", "# TODO: remove\n")
	write("README.md", "TODO TODO TODO\n")
	write("node_modules/dep/index.js", "// TODO: vendored\n")
	write(".git/config", "TODO\n")

	provider := &RepoScanProvider{Root: dir}
	got, err := provider.Analyze(context.Background(), "repository")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	// main.go has a TODO and a FIXME, script.py one TODO. Markdown and
	// skipped directories must not count.
	if got.Issues != 3 {
		t.Errorf("Issues = %d, want 3 (%s)", got.Issues, got.Details)
	}
	if got.Details == "" {
		t.Error("expected a details line")
	}
}

func TestRepoScanProviderEmptyTree(t *testing.T) {
	provider := &RepoScanProvider{Root: t.TempDir()}
	got, err := provider.Analyze(context.Background(), "repository")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.Issues != 0 {
		t.Errorf("Issues = %d, want 0", got.Issues)
	}
}

func TestStaticLintProvider(t *testing.T) {
	provider := &StaticLintProvider{Result: LintSummary{Issues: 12, Details: "stub"}}
	got, err := provider.Analyze(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.Issues != 12 || got.Details != "stub" {
		t.Errorf("unexpected summary %+v", got)
	}
}
