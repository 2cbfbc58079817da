// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the literature monitor:
// the Paper record produced by scraping, the Insight cache entry produced
// by analysis, and the configuration structs each component consumes.
package types

import (
	"strconv"
	"time"
)

// Paper holds the metadata of one arXiv paper. Identity is the ArxivID;
// a paper is immutable after insertion except for Summary, which the
// analysis stage populates once.
type Paper struct {
	// ArxivID is the identifier issued by arXiv (e.g. "2401.00001"),
	// with any version suffix stripped.
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title as returned by the API.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PublishedDate is the submission date, resolved through the
	// fallback chain in the arxiv package.
	PublishedDate time.Time `json:"published_date" yaml:"published_date"`

	// Categories lists the arXiv category terms (e.g. "cs.LG").
	Categories []string `json:"categories" yaml:"categories"`

	// PDFURL points at the arXiv PDF for this paper.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Summary is the generated summary, empty until analysis runs.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// CreatedAt is when the paper was first saved locally.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Insight is a cached analysis report for one time window. The entry is
// valid as long as ContentHash matches the hash of the record set it
// summarizes; a mismatch forces regeneration.
type Insight struct {
	// Key identifies the window (e.g. "insights_7d").
	Key string `json:"key" yaml:"key"`

	// ContentHash is the digest of the record set the text was derived
	// from, as computed by the store.
	ContentHash string `json:"content_hash" yaml:"content_hash"`

	// Text is the generated insight report.
	Text string `json:"text" yaml:"text"`

	// TrendingTopics lists the most frequent terms in the window.
	TrendingTopics []string `json:"trending_topics" yaml:"trending_topics"`

	// GeneratedAt is when the entry was first created.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// UpdatedAt is when the entry was last regenerated.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// InsightKey returns the cache key for a window of the given length.
func InsightKey(days int) string {
	if days <= 0 {
		days = 7
	}
	return "insights_" + strconv.Itoa(days) + "d"
}
