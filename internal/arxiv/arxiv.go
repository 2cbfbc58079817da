// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv queries the arXiv Atom API for paper metadata.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DingyangLyu/AutoMatResearch/internal/httputil"
	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// apiBase is the arXiv search endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// absBase is the arXiv abstract page root used for date resolution.
var absBase = "https://arxiv.org/abs/"

const dateStampLayout = "20060102150405"

// Client fetches paper metadata from arXiv.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	resolveDates bool
}

// NewClient builds a Client from the scrape configuration.
func NewClient(cfg types.ScrapeConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		userAgent:    cfg.UserAgent,
		resolveDates: cfg.ResolveDates,
	}
}

// Query describes one page of an arXiv search.
type Query struct {
	// Keywords are combined with AND, each matched against all fields.
	Keywords []string

	// From and To bound the submission date window (inclusive).
	From time.Time
	To   time.Time

	// Start is the zero-based result offset for pagination.
	Start int

	// PageSize is the number of results requested.
	PageSize int
}

// Search runs one page of a windowed query, newest submissions first.
func (c *Client) Search(ctx context.Context, q Query) ([]types.Paper, error) {
	sq := buildQuery(q)
	if sq == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	params := url.Values{}
	params.Set("search_query", sq)
	params.Set("start", strconv.Itoa(q.Start))
	params.Set("max_results", strconv.Itoa(pageSize))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.Paper
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		p := types.Paper{
			ArxivID:  arxivID,
			Title:    collapseSpace(entry.Title),
			Abstract: collapseSpace(entry.Summary),
		}
		for _, a := range entry.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		for _, cat := range entry.Categories {
			if cat.Term != "" {
				p.Categories = append(p.Categories, cat.Term)
			}
		}
		for _, link := range entry.Links {
			if link.Title == "pdf" {
				p.PDFURL = link.Href
			}
		}
		if p.PDFURL == "" {
			p.PDFURL = "https://arxiv.org/pdf/" + arxivID
		}
		p.PublishedDate = c.resolvePublished(ctx, arxivID, entry.Published)

		papers = append(papers, p)
	}
	return papers, nil
}

// buildQuery constructs the search_query parameter: every keyword as an
// all-fields term joined with AND, intersected with the submission date
// window when one is set.
func buildQuery(q Query) string {
	terms := make([]string, 0, len(q.Keywords))
	for _, kw := range q.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		terms = append(terms, fmt.Sprintf("all:%q", kw))
	}
	if len(terms) == 0 {
		return ""
	}

	query := "(" + strings.Join(terms, " AND ") + ")"
	if !q.From.IsZero() && !q.To.IsZero() {
		query += fmt.Sprintf(" AND submittedDate:[%s TO %s]",
			q.From.UTC().Format(dateStampLayout),
			q.To.UTC().Format(dateStampLayout))
	}
	return query
}

// collapseSpace trims a string and folds internal runs of whitespace,
// which the Atom feed uses freely inside titles and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Authors    []atomAuthor   `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Links      []atomLink     `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" becomes "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
