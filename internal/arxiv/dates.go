// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// submissionDatePattern matches dates like "14 Mar 2026" in the
// dateline of an abstract page.
var submissionDatePattern = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

const submissionDateLayout = "2 Jan 2006"

// resolvePublished determines a paper's publication date. Sources are
// tried in a fixed order: the abstract page dateline, the year and
// month encoded in the arXiv identifier, the API's published field,
// and finally the current time.
func (c *Client) resolvePublished(ctx context.Context, arxivID, apiPublished string) time.Time {
	if c.resolveDates {
		if t, err := c.scrapeSubmissionDate(ctx, arxivID); err == nil {
			return t
		}
	}
	if t, ok := dateFromID(arxivID); ok {
		return t
	}
	if t, err := time.Parse(time.RFC3339, apiPublished); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

// scrapeSubmissionDate fetches the abstract page and extracts the
// submission date from its dateline.
func (c *Client) scrapeSubmissionDate(ctx context.Context, arxivID string) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, absBase+arxivID, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetching abstract page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("abstract page returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing abstract page: %w", err)
	}

	dateline := doc.Find("div.dateline").First().Text()
	if dateline == "" {
		dateline = doc.Find("div.submission-history").First().Text()
	}

	match := submissionDatePattern.FindString(dateline)
	if match == "" {
		return time.Time{}, fmt.Errorf("no date found on abstract page for %s", arxivID)
	}

	t, err := time.Parse(submissionDateLayout, match)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing dateline %q: %w", match, err)
	}
	return t.UTC(), nil
}

// dateFromID derives the first day of the submission month from a
// modern arXiv identifier ("2603.01234" means March 2026). Identifiers
// without the YYMM prefix report ok false.
func dateFromID(arxivID string) (time.Time, bool) {
	dot := strings.Index(arxivID, ".")
	if dot != 4 {
		return time.Time{}, false
	}
	yymm := arxivID[:4]
	yy, err := strconv.Atoi(yymm[:2])
	if err != nil {
		return time.Time{}, false
	}
	mm, err := strconv.Atoi(yymm[2:])
	if err != nil || mm < 1 || mm > 12 {
		return time.Time{}, false
	}
	return time.Date(2000+yy, time.Month(mm), 1, 0, 0, 0, 0, time.UTC), true
}
