// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2603.01234v2</id>
    <title>Machine Learning for
      Battery Materials</title>
    <summary>  We survey learned interatomic potentials.  </summary>
    <published>2026-03-14T09:30:00Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Charles Babbage</name></author>
    <category term="cond-mat.mtrl-sci"/>
    <category term="cs.LG"/>
    <link href="http://arxiv.org/abs/2603.01234v2" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2603.01234v2" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2602.09999v1</id>
    <title>Diffusion Models for Crystal Generation</title>
    <summary>Generative models produce stable structures.</summary>
    <published>2026-02-20T12:00:00Z</published>
    <author><name>Grace Hopper</name></author>
    <category term="cond-mat.mtrl-sci"/>
  </entry>
</feed>`

func withAPIServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	oldAPI := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = oldAPI })
}

func TestSearchParsesFeed(t *testing.T) {
	var gotQuery string
	withAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	})

	c := NewClient(types.ScrapeConfig{
		HTTPConfig:   types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "automat-test"},
		ResolveDates: false,
	})

	papers, err := c.Search(context.Background(), Query{
		Keywords: []string{"machine learning", "materials"},
		From:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		PageSize: 50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2", len(papers))
	}

	p := papers[0]
	if p.ArxivID != "2603.01234" {
		t.Errorf("arxiv id = %q", p.ArxivID)
	}
	if p.Title != "Machine Learning for Battery Materials" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Abstract != "We survey learned interatomic potentials." {
		t.Errorf("abstract = %q", p.Abstract)
	}
	if len(p.Authors) != 2 || p.Authors[1] != "Charles Babbage" {
		t.Errorf("authors = %v", p.Authors)
	}
	if len(p.Categories) != 2 || p.Categories[0] != "cond-mat.mtrl-sci" {
		t.Errorf("categories = %v", p.Categories)
	}
	if p.PDFURL != "http://arxiv.org/pdf/2603.01234v2" {
		t.Errorf("pdf url = %q", p.PDFURL)
	}
	// With abstract-page resolution off, the identifier month wins.
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !p.PublishedDate.Equal(want) {
		t.Errorf("published = %v, want %v", p.PublishedDate, want)
	}

	// Second entry has no pdf link; a derived URL is filled in.
	if papers[1].PDFURL != "https://arxiv.org/pdf/2602.09999" {
		t.Errorf("derived pdf url = %q", papers[1].PDFURL)
	}

	if !strings.Contains(gotQuery, `all:"machine learning" AND all:"materials"`) {
		t.Errorf("search_query = %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "submittedDate:[20260201000000 TO 20260331000000]") {
		t.Errorf("search_query window = %q", gotQuery)
	}
}

func TestSearchHTTPError(t *testing.T) {
	withAPIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := NewClient(types.ScrapeConfig{})
	_, err := c.Search(context.Background(), Query{Keywords: []string{"x"}})
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Fatalf("err = %v", err)
	}
}

func TestSearchEmptyKeywords(t *testing.T) {
	c := NewClient(types.ScrapeConfig{})
	if _, err := c.Search(context.Background(), Query{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{
			name: "single keyword no window",
			q:    Query{Keywords: []string{"perovskite"}},
			want: `(all:"perovskite")`,
		},
		{
			name: "multiple keywords",
			q:    Query{Keywords: []string{"machine learning", "catalysis"}},
			want: `(all:"machine learning" AND all:"catalysis")`,
		},
		{
			name: "blank keywords dropped",
			q:    Query{Keywords: []string{" ", "", "solid state"}},
			want: `(all:"solid state")`,
		},
		{
			name: "all blank",
			q:    Query{Keywords: []string{"", "  "}},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQuery(tt.q); got != tt.want {
				t.Errorf("buildQuery = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041v12", "2301.07041"},
		{"http://example.com/nothing", ""},
	}
	for _, tt := range tests {
		if got := extractArxivID(tt.in); got != tt.want {
			t.Errorf("extractArxivID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateFromID(t *testing.T) {
	tests := []struct {
		id   string
		want time.Time
		ok   bool
	}{
		{"2603.01234", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"0912.00001", time.Date(2009, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"2613.00001", time.Time{}, false},
		{"cond-mat/0301123", time.Time{}, false},
		{"abcd.01234", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := dateFromID(tt.id)
		if ok != tt.ok {
			t.Errorf("dateFromID(%q) ok = %v, want %v", tt.id, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("dateFromID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestScrapeSubmissionDate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="dateline">[Submitted on 14 Mar 2026 (v1), last revised 20 Mar 2026 (this version, v2)]</div>
		</body></html>`))
	}))
	t.Cleanup(ts.Close)

	oldAbs := absBase
	absBase = ts.URL + "/"
	t.Cleanup(func() { absBase = oldAbs })

	c := NewClient(types.ScrapeConfig{ResolveDates: true})
	got, err := c.scrapeSubmissionDate(context.Background(), "2603.01234")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}
}

func TestScrapeSubmissionDateMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><p>no dateline here</p></body></html>`))
	}))
	t.Cleanup(ts.Close)

	oldAbs := absBase
	absBase = ts.URL + "/"
	t.Cleanup(func() { absBase = oldAbs })

	c := NewClient(types.ScrapeConfig{ResolveDates: true})
	if _, err := c.scrapeSubmissionDate(context.Background(), "2603.01234"); err == nil {
		t.Fatal("expected error when no date present")
	}
}

func TestResolvePublishedFallbackChain(t *testing.T) {
	// Resolution off and a non-modern identifier: the API field wins.
	c := NewClient(types.ScrapeConfig{ResolveDates: false})
	got := c.resolvePublished(context.Background(), "cond-mat/0301123", "2003-01-15T10:00:00Z")
	want := time.Date(2003, 1, 15, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("published = %v, want %v", got, want)
	}

	// Nothing parseable at all: the current time is used.
	before := time.Now().Add(-time.Minute)
	got = c.resolvePublished(context.Background(), "cond-mat/0301123", "garbage")
	if got.Before(before) {
		t.Errorf("fallback date %v predates the call", got)
	}
}
