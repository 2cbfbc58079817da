// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
)

// keywordProfile is the on-disk shape of the keyword list.
type keywordProfile struct {
	Keywords  []string  `yaml:"keywords"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Keywords manages the mutable search-term list. The list starts from
// the static configuration and survives restarts through a YAML profile
// file next to the database. All methods are safe for concurrent use.
type Keywords struct {
	mu   sync.RWMutex
	path string
	list []string
}

// NewKeywords builds a manager seeded from defaults, overridden by the
// profile file at path when one exists.
func NewKeywords(path string, defaults []string) (*Keywords, error) {
	k := &Keywords{
		path: path,
		list: append([]string(nil), defaults...),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return k, nil
		}
		return nil, fmt.Errorf("reading keyword profile %s: %w", path, err)
	}

	var profile keywordProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing keyword profile %s: %w", path, err)
	}
	if len(profile.Keywords) > 0 {
		k.list = profile.Keywords
	}
	return k, nil
}

// List returns a copy of the current keywords.
func (k *Keywords) List() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]string(nil), k.list...)
}

// Add appends a keyword if it is not already present. It reports
// whether the list changed.
func (k *Keywords) Add(kw string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, existing := range k.list {
		if existing == kw {
			return false, nil
		}
	}
	k.list = append(k.list, kw)
	return true, k.saveLocked()
}

// Remove deletes a keyword. It reports whether the list changed.
// Removing the last keyword is refused so scraping never runs with an
// empty query.
func (k *Keywords) Remove(kw string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i, existing := range k.list {
		if existing != kw {
			continue
		}
		if len(k.list) == 1 {
			return false, fmt.Errorf("cannot remove the last keyword %q", kw)
		}
		k.list = append(k.list[:i], k.list[i+1:]...)
		return true, k.saveLocked()
	}
	return false, nil
}

// Set replaces the entire list.
func (k *Keywords) Set(keywords []string) error {
	if len(keywords) == 0 {
		return fmt.Errorf("keyword list must not be empty")
	}
	seen := make(map[string]bool, len(keywords))
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		cleaned = append(cleaned, kw)
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("keyword list must contain at least one non-empty term")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.list = cleaned
	return k.saveLocked()
}

// Sorted returns the keywords in lexical order, for stable display.
func (k *Keywords) Sorted() []string {
	out := k.List()
	sort.Strings(out)
	return out
}

func (k *Keywords) saveLocked() error {
	profile := keywordProfile{
		Keywords:  k.list,
		UpdatedAt: time.Now().UTC(),
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshaling keyword profile: %w", err)
	}
	if dir := filepath.Dir(k.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating profile directory: %w", err)
		}
	}
	if err := os.WriteFile(k.path, data, 0o644); err != nil {
		return fmt.Errorf("writing keyword profile %s: %w", k.path, err)
	}
	return nil
}
