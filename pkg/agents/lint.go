// SPDX-License-Identifier: Apache-2.0
package agents

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LintSummary is a provider's view of a target's code health.
type LintSummary struct {
	Issues  int    `json:"issues"`
	Details string `json:"details,omitempty"`
}

// LintProvider analyzes a target for code-health issues.
type LintProvider interface {
	Analyze(ctx context.Context, target string) (LintSummary, error)
}

// StaticLintProvider always reports the same summary. The zero value
// reports a clean tree.
type StaticLintProvider struct {
	Result LintSummary
}

// Analyze implements LintProvider.
func (p *StaticLintProvider) Analyze(context.Context, string) (LintSummary, error) {
	return p.Result, nil
}

var scanExtensions = map[string]bool{
	".go":  true,
	".py":  true,
	".js":  true,
	".ts":  true,
	".sol": true,
}

// RepoScanProvider walks a source tree counting deferred-work markers as a
// cheap proxy for lint debt. Unreadable files are skipped, not fatal.
type RepoScanProvider struct {
	Root string
}

// Analyze implements LintProvider.
func (p *RepoScanProvider) Analyze(ctx context.Context, _ string) (LintSummary, error) {
	root := p.Root
	if root == "" {
		root = "."
	}

	issues, files := 0, 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "node_modules", "vendor":
				return filepath.SkipDir
			}
			return nil
		}
		if !scanExtensions[filepath.Ext(path)] {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		files++
		issues += strings.Count(string(raw), "TODO") + strings.Count(string(raw), "FIXME")
		return nil
	})
	if err != nil {
		return LintSummary{}, fmt.Errorf("scan %s: %w", root, err)
	}

	return LintSummary{
		Issues:  issues,
		Details: fmt.Sprintf("%d deferred-work markers across %d files", issues, files),
	}, nil
}
