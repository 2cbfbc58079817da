// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// ContentHash returns a stable SHA-256 digest over the identifying
// fields of the given papers. The papers are sorted by arXiv identifier
// first so the hash is independent of input order; two calls over the
// same logical set always produce the same digest.
func ContentHash(papers []types.Paper) string {
	sorted := append([]types.Paper(nil), papers...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ArxivID < sorted[j].ArxivID
	})

	h := sha256.New()
	for _, p := range sorted {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s\x00%s\x1e",
			p.ArxivID,
			strings.TrimSpace(p.Title),
			strings.Join(p.Authors, ","),
			strings.TrimSpace(p.Abstract),
			p.PublishedDate.UTC().Format(time.RFC3339),
			strings.Join(p.Categories, ","),
		)
	}
	return hex.EncodeToString(h.Sum(nil))
}
