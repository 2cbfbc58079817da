// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes stored papers to JSON, Markdown, and BibTeX
// files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatBibTeX   Format = "bibtex"
)

var extensions = map[Format]string{
	FormatJSON:     ".json",
	FormatMarkdown: ".md",
	FormatBibTeX:   ".bib",
}

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "bibtex", "bib":
		return FormatBibTeX, nil
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// Exporter writes papers to files under a directory.
type Exporter struct {
	dir string
}

// New builds an Exporter writing under cfg.Dir.
func New(cfg types.ExportConfig) *Exporter {
	return &Exporter{dir: cfg.Dir}
}

// Write encodes papers in the given format to a timestamped file and
// returns its path.
func (e *Exporter) Write(papers []types.Paper, format Format) (string, error) {
	ext, ok := extensions[format]
	if !ok {
		return "", fmt.Errorf("unknown export format %q", format)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	name := fmt.Sprintf("papers_%s%s", time.Now().UTC().Format("20060102_150405"), ext)
	path := filepath.Join(e.dir, name)

	data, err := Encode(papers, format)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	return path, nil
}

// Encode renders papers in the given format.
func Encode(papers []types.Paper, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(papers, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding JSON: %w", err)
		}
		return data, nil
	case FormatMarkdown:
		return []byte(encodeMarkdown(papers)), nil
	case FormatBibTeX:
		var b strings.Builder
		for i, p := range papers {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(BibTeXEntry(p))
		}
		return []byte(b.String()), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

func encodeMarkdown(papers []types.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Papers (%d)\n\nExported %s\n\n",
		len(papers), time.Now().UTC().Format("2006-01-02"))

	for _, p := range papers {
		fmt.Fprintf(&b, "## %s\n\n", p.Title)
		fmt.Fprintf(&b, "- arXiv: [%s](https://arxiv.org/abs/%s)\n", p.ArxivID, p.ArxivID)
		fmt.Fprintf(&b, "- Authors: %s\n", strings.Join(p.Authors, ", "))
		fmt.Fprintf(&b, "- Published: %s\n", p.PublishedDate.Format("2006-01-02"))
		if len(p.Categories) > 0 {
			fmt.Fprintf(&b, "- Categories: %s\n", strings.Join(p.Categories, ", "))
		}
		fmt.Fprintf(&b, "\n%s\n\n", p.Abstract)
		if p.Summary != "" {
			fmt.Fprintf(&b, "### AI Summary\n\n%s\n\n", p.Summary)
		}
	}
	return b.String()
}

// BibTeXEntry renders one paper as an @article entry. The citation key
// is the first author's surname, the publication year, and the leading
// words of the title.
func BibTeXEntry(p types.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@article{%s,\n", citationKey(p))
	fmt.Fprintf(&b, "  title = {%s},\n", escapeBibTeX(p.Title))
	fmt.Fprintf(&b, "  author = {%s},\n", escapeBibTeX(strings.Join(p.Authors, " and ")))
	fmt.Fprintf(&b, "  year = {%d},\n", p.PublishedDate.Year())
	fmt.Fprintf(&b, "  eprint = {%s},\n", p.ArxivID)
	fmt.Fprintf(&b, "  archivePrefix = {arXiv},\n")
	if len(p.Categories) > 0 {
		fmt.Fprintf(&b, "  primaryClass = {%s},\n", p.Categories[0])
	}
	fmt.Fprintf(&b, "  url = {https://arxiv.org/abs/%s},\n", p.ArxivID)
	fmt.Fprintf(&b, "  abstract = {%s}\n", escapeBibTeX(p.Abstract))
	b.WriteString("}\n")
	return b.String()
}

func citationKey(p types.Paper) string {
	surname := "unknown"
	if len(p.Authors) > 0 {
		fields := strings.Fields(p.Authors[0])
		if len(fields) > 0 {
			surname = strings.ToLower(fields[len(fields)-1])
		}
	}

	words := strings.Fields(strings.ToLower(p.Title))
	if len(words) > 3 {
		words = words[:3]
	}

	key := surname + fmt.Sprintf("%d", p.PublishedDate.Year()) + strings.Join(words, "")
	return sanitizeKey(key)
}

// sanitizeKey strips characters BibTeX keys cannot carry.
func sanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeBibTeX(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "{", `\{`)
	s = strings.ReplaceAll(s, "}", `\}`)
	return s
}
