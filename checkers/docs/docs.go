// Package docs checks a project's markdown documentation. It is the one
// built-in checker that needs no virtual environment.
package docs

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	markdown "github.com/teekennedy/goldmark-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"

	"github.com/jrossi/lintgate/checkers"
)

// DocsChecker lints markdown files across a project tree.
type DocsChecker struct {
	config *DocsConfig
	parser goldmark.Markdown
}

// NewDocsChecker creates a checker with default configuration.
func NewDocsChecker() *DocsChecker {
	return NewDocsCheckerWithConfig(nil)
}

// NewDocsCheckerWithConfig creates a checker with custom configuration.
func NewDocsCheckerWithConfig(config *DocsConfig) *DocsChecker {
	if config == nil {
		config = DefaultDocsConfig()
	}

	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithExtensions(
			&frontmatter.Extender{},
		),
	)

	return &DocsChecker{config: config, parser: md}
}

// Name returns the checker name.
func (c *DocsChecker) Name() string {
	return "docs"
}

// SetConfig updates the checker configuration from raw JSON.
func (c *DocsChecker) SetConfig(config json.RawMessage) error {
	var cfg DocsConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal docs config: %w", err)
	}
	c.config = &cfg
	return nil
}

// Check walks the project for markdown files and lints each one. Virtual
// environments, hidden directories, and the tool cache are skipped.
func (c *DocsChecker) Check(ctx context.Context, proj checkers.Project) (*checkers.Result, error) {
	result := &checkers.Result{Success: true}
	var output bytes.Buffer

	err := filepath.WalkDir(proj.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if c.skipDir(proj, path, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") && !strings.HasSuffix(d.Name(), ".markdown") {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(proj.Dir, path)
		if relErr != nil {
			rel = path
		}
		result.Findings = append(result.Findings, c.lintFile(rel, content)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, f := range result.Findings {
		fmt.Fprintf(&output, "%s:%d:%d: %s %s\n", f.File, f.Line, f.Column, f.Code, f.Message)
		if f.Severity == "error" {
			result.Success = false
		}
	}
	if !result.Success {
		result.ExitCode = 1
	}
	result.Output = output.Bytes()

	return result, nil
}

func (c *DocsChecker) skipDir(proj checkers.Project, path, name string) bool {
	if path == proj.Dir {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	// Virtual environments hold third-party READMEs we must not gate on.
	if name == "venv" || name == "node_modules" || name == "__pycache__" {
		return true
	}
	if _, err := os.Stat(filepath.Join(path, "pyvenv.cfg")); err == nil {
		return true
	}
	return false
}

// lintFile applies every rule to one markdown document.
func (c *DocsChecker) lintFile(relPath string, content []byte) []checkers.Finding {
	var findings []checkers.Finding

	reader := text.NewReader(content)
	parserCtx := parser.NewContext()
	doc := c.parser.Parser().Parse(reader, parser.WithContext(parserCtx))

	if c.config.RequireFrontmatter != nil && *c.config.RequireFrontmatter {
		if fm := frontmatter.Get(parserCtx); fm == nil {
			findings = append(findings, checkers.Finding{
				File:     relPath,
				Line:     1,
				Column:   1,
				Severity: "error",
				Code:     "frontmatter",
				Message:  "document is missing front matter",
			})
		}
	}

	findings = append(findings, c.checkHeadings(doc, content, relPath)...)
	findings = append(findings, c.checkLines(content, relPath)...)
	findings = append(findings, c.checkFormatting(doc, content, relPath)...)

	return findings
}

// checkHeadings flags skipped heading levels (H1 straight to H3).
func (c *DocsChecker) checkHeadings(doc ast.Node, source []byte, relPath string) []checkers.Finding {
	var findings []checkers.Finding
	lastLevel := 0

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := node.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		if lastLevel > 0 && heading.Level > lastLevel+1 {
			findings = append(findings, checkers.Finding{
				File:     relPath,
				Line:     nodeLine(source, heading),
				Column:   1,
				Severity: "error",
				Code:     "heading-hierarchy",
				Message:  fmt.Sprintf("heading level %d skips level %d", heading.Level, lastLevel+1),
			})
		}
		lastLevel = heading.Level
		return ast.WalkContinue, nil
	})

	return findings
}

// checkLines covers the per-line rules: trailing whitespace and length.
func (c *DocsChecker) checkLines(source []byte, relPath string) []checkers.Finding {
	var findings []checkers.Finding
	maxLen := 0
	if c.config.MaxLineLength != nil {
		maxLen = *c.config.MaxLineLength
	}

	for i, line := range strings.Split(string(source), "\n") {
		if n := len(line); n > 0 && (line[n-1] == ' ' || line[n-1] == '\t') {
			findings = append(findings, checkers.Finding{
				File:     relPath,
				Line:     i + 1,
				Column:   n,
				Severity: "error",
				Code:     "trailing-whitespace",
				Message:  "line has trailing whitespace",
			})
		}
		if maxLen > 0 && len(line) > maxLen {
			findings = append(findings, checkers.Finding{
				File:     relPath,
				Line:     i + 1,
				Column:   maxLen + 1,
				Severity: "warning",
				Code:     "line-length",
				Message:  fmt.Sprintf("line exceeds %d characters (%d)", maxLen, len(line)),
			})
		}
	}

	return findings
}

// checkFormatting renders the document back to markdown and flags files
// that do not round-trip, which is how formatting drift shows up.
func (c *DocsChecker) checkFormatting(doc ast.Node, source []byte, relPath string) []checkers.Finding {
	if c.config.CheckFormatting == nil || !*c.config.CheckFormatting {
		return nil
	}

	var rendered bytes.Buffer
	renderer := markdown.NewRenderer()
	if err := renderer.Render(&rendered, source, doc); err != nil {
		return []checkers.Finding{{
			File:     relPath,
			Line:     1,
			Column:   1,
			Severity: "warning",
			Code:     "formatting",
			Message:  fmt.Sprintf("could not render document: %v", err),
		}}
	}

	if !bytes.Equal(bytes.TrimSpace(source), bytes.TrimSpace(rendered.Bytes())) {
		return []checkers.Finding{{
			File:     relPath,
			Line:     1,
			Column:   1,
			Severity: "warning",
			Code:     "formatting",
			Message:  "document does not match canonical formatting",
		}}
	}

	return nil
}

// nodeLine computes the 1-based source line of an AST node.
func nodeLine(source []byte, node ast.Node) int {
	type lined interface {
		Lines() *text.Segments
	}
	if n, ok := node.(lined); ok && n.Lines().Len() > 0 {
		start := n.Lines().At(0).Start
		line := 1
		for i := 0; i < start && i < len(source); i++ {
			if source[i] == '\n' {
				line++
			}
		}
		return line
	}
	if parent := node.Parent(); parent != nil {
		return nodeLine(source, parent)
	}
	return 1
}
