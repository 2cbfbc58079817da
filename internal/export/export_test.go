// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

func samplePaper() types.Paper {
	return types.Paper{
		ArxivID:       "2603.01234",
		Title:         "Deep Learning for Battery {Electrolytes}",
		Authors:       []string{"Ada Lovelace", "Charles Babbage"},
		Abstract:      "We study electrolyte screening.",
		PublishedDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Categories:    []string{"cond-mat.mtrl-sci"},
		Summary:       "A short AI summary.",
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{"JSON", FormatJSON, true},
		{"md", FormatMarkdown, true},
		{"markdown", FormatMarkdown, true},
		{"bib", FormatBibTeX, true},
		{"bibtex", FormatBibTeX, true},
		{"csv", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseFormat(%q) should fail", tt.in)
		}
	}
}

func TestEncodeJSONRoundTrip(t *testing.T) {
	papers := []types.Paper{samplePaper()}
	data, err := Encode(papers, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	var decoded []types.Paper
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0].ArxivID != "2603.01234" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestEncodeMarkdown(t *testing.T) {
	data, err := Encode([]types.Paper{samplePaper()}, FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	for _, want := range []string{
		"## Deep Learning for Battery {Electrolytes}",
		"Ada Lovelace, Charles Babbage",
		"https://arxiv.org/abs/2603.01234",
		"### AI Summary",
		"A short AI summary.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestBibTeXEntry(t *testing.T) {
	entry := BibTeXEntry(samplePaper())

	if !strings.HasPrefix(entry, "@article{lovelace2026deeplearningfor,") {
		t.Errorf("entry header = %q", strings.SplitN(entry, "\n", 2)[0])
	}
	for _, want := range []string{
		`author = {Ada Lovelace and Charles Babbage}`,
		`year = {2026}`,
		`eprint = {2603.01234}`,
		`primaryClass = {cond-mat.mtrl-sci}`,
		`title = {Deep Learning for Battery \{Electrolytes\}}`,
	} {
		if !strings.Contains(entry, want) {
			t.Errorf("entry missing %q", want)
		}
	}
}

func TestBibTeXEntryNoAuthors(t *testing.T) {
	p := samplePaper()
	p.Authors = nil
	entry := BibTeXEntry(p)
	if !strings.HasPrefix(entry, "@article{unknown2026") {
		t.Errorf("entry header = %q", strings.SplitN(entry, "\n", 2)[0])
	}
}

func TestWriteCreatesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	e := New(types.ExportConfig{Dir: filepath.Join(dir, "exports")})

	path, err := e.Write([]types.Paper{samplePaper()}, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "2603.01234") {
		t.Error("file does not contain the paper")
	}
}
