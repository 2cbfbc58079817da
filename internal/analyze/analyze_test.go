// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// fakeChat returns canned text and counts calls.
type fakeChat struct {
	calls   int32
	reply   string
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeChat) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// memStore is an in-memory analyze.Store.
type memStore struct {
	papers    map[string]types.Paper
	summaries map[string]string
	insights  map[string]types.Insight
}

func newMemStore(papers ...types.Paper) *memStore {
	m := &memStore{
		papers:    make(map[string]types.Paper),
		summaries: make(map[string]string),
		insights:  make(map[string]types.Insight),
	}
	for _, p := range papers {
		m.papers[p.ArxivID] = p
	}
	return m
}

func (m *memStore) GetPaper(_ context.Context, id string) (types.Paper, error) {
	p, ok := m.papers[id]
	if !ok {
		return types.Paper{}, sql.ErrNoRows
	}
	return p, nil
}

func (m *memStore) PapersSince(_ context.Context, since time.Time) ([]types.Paper, error) {
	var out []types.Paper
	for _, p := range m.papers {
		if !p.PublishedDate.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) UpdateSummary(_ context.Context, id, summary string) error {
	if _, ok := m.papers[id]; !ok {
		return fmt.Errorf("paper %s not found", id)
	}
	m.summaries[id] = summary
	return nil
}

func (m *memStore) GetInsight(_ context.Context, key string) (types.Insight, error) {
	in, ok := m.insights[key]
	if !ok {
		return types.Insight{}, sql.ErrNoRows
	}
	return in, nil
}

func (m *memStore) PutInsight(_ context.Context, in types.Insight) error {
	m.insights[in.Key] = in
	return nil
}

func recentPaper(id string) types.Paper {
	return types.Paper{
		ArxivID:       id,
		Title:         "Neural potentials for alloys",
		Authors:       []string{"A. Author"},
		Abstract:      "Interatomic potentials learned from DFT data.",
		PublishedDate: time.Now().UTC().Add(-24 * time.Hour),
	}
}

func TestSummarize(t *testing.T) {
	chat := &fakeChat{reply: "  A concise summary.  "}
	a := New(newMemStore(), chat, types.AIConfig{SummaryMaxTokens: 500}, nil)

	got, err := a.Summarize(context.Background(), recentPaper("2601.00001"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "A concise summary." {
		t.Errorf("summary = %q", got)
	}
}

func TestSummarizeBatch(t *testing.T) {
	st := newMemStore(recentPaper("2601.00001"), recentPaper("2601.00002"))
	chat := &fakeChat{reply: "Summary text."}
	a := New(st, chat, types.AIConfig{}, nil)

	withSummary := recentPaper("2601.00003")
	withSummary.Summary = "already done"
	st.papers[withSummary.ArxivID] = withSummary

	papers := []types.Paper{
		st.papers["2601.00001"],
		st.papers["2601.00002"],
		withSummary,
	}
	res, err := a.SummarizeBatch(context.Background(), papers)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summarized != 2 || res.Skipped != 1 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}
	if st.summaries["2601.00001"] != "Summary text." {
		t.Errorf("stored summary = %q", st.summaries["2601.00001"])
	}
}

func TestSummarizeBatchFailureContinues(t *testing.T) {
	st := newMemStore(recentPaper("2601.00001"))
	chat := &fakeChat{err: fmt.Errorf("model unavailable")}
	a := New(st, chat, types.AIConfig{}, nil)

	res, err := a.SummarizeBatch(context.Background(), []types.Paper{st.papers["2601.00001"]})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 || res.Summarized != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestInsightsEmptyStore(t *testing.T) {
	chat := &fakeChat{reply: "should not be called"}
	a := New(newMemStore(), chat, types.AIConfig{}, nil)

	in, err := a.Insights(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(in.Text, "No papers") {
		t.Errorf("text = %q", in.Text)
	}
	if atomic.LoadInt32(&chat.calls) != 0 {
		t.Error("empty store must not call the model")
	}
}

func TestInsightsCachedByContentHash(t *testing.T) {
	st := newMemStore(recentPaper("2601.00001"), recentPaper("2601.00002"))
	chat := &fakeChat{reply: "Trend analysis."}
	a := New(st, chat, types.AIConfig{}, nil)

	first, err := a.Insights(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if first.Text != "Trend analysis." {
		t.Errorf("text = %q", first.Text)
	}
	if first.Key != "insights_7d" {
		t.Errorf("key = %q", first.Key)
	}

	if first.UpdatedAt.IsZero() {
		t.Error("generating call must populate UpdatedAt")
	}
	if !first.GeneratedAt.Equal(first.GeneratedAt.Truncate(time.Second)) {
		t.Errorf("GeneratedAt %v carries sub-second precision", first.GeneratedAt)
	}

	second, err := a.Insights(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("unchanged store must return the cached insight verbatim:\nfirst  %+v\nsecond %+v", first, second)
	}
	if got := atomic.LoadInt32(&chat.calls); got != 1 {
		t.Errorf("model calls = %d, want 1", got)
	}
}

func TestInsightsRegeneratesOnChange(t *testing.T) {
	st := newMemStore(recentPaper("2601.00001"))
	chat := &fakeChat{reply: "First analysis."}
	a := New(st, chat, types.AIConfig{}, nil)

	if _, err := a.Insights(context.Background(), 7); err != nil {
		t.Fatal(err)
	}

	st.papers["2601.00002"] = recentPaper("2601.00002")
	chat.reply = "Second analysis."

	in, err := a.Insights(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if in.Text != "Second analysis." {
		t.Errorf("text = %q, want regenerated", in.Text)
	}
	if got := atomic.LoadInt32(&chat.calls); got != 2 {
		t.Errorf("model calls = %d, want 2", got)
	}
}

func TestInsightsConcurrentCallerGetsErrGenerating(t *testing.T) {
	st := newMemStore(recentPaper("2601.00001"))
	chat := &fakeChat{
		reply:   "Slow analysis.",
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	a := New(st, chat, types.AIConfig{}, nil)

	started := chat.started
	done := make(chan error, 1)
	go func() {
		_, err := a.Insights(context.Background(), 7)
		done <- err
	}()
	<-started

	// Nothing cached yet, so the concurrent caller gets the sentinel.
	if _, err := a.Insights(context.Background(), 7); err != ErrGenerating {
		t.Errorf("err = %v, want ErrGenerating", err)
	}

	close(chat.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestInsightsConcurrentCallerGetsStaleCache(t *testing.T) {
	st := newMemStore(recentPaper("2601.00001"))
	st.insights["insights_7d"] = types.Insight{
		Key:         "insights_7d",
		ContentHash: "stale-hash",
		Text:        "Stale analysis.",
	}
	chat := &fakeChat{
		reply:   "Fresh analysis.",
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	a := New(st, chat, types.AIConfig{}, nil)

	started := chat.started
	done := make(chan error, 1)
	go func() {
		_, err := a.Insights(context.Background(), 7)
		done <- err
	}()
	<-started

	in, err := a.Insights(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if in.Text != "Stale analysis." {
		t.Errorf("text = %q, want the stale cache entry", in.Text)
	}

	close(chat.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestCompare(t *testing.T) {
	st := newMemStore(recentPaper("2601.00001"), recentPaper("2601.00002"))
	chat := &fakeChat{reply: "Comparison text."}
	a := New(st, chat, types.AIConfig{}, nil)

	got, err := a.Compare(context.Background(), []string{"2601.00001", "2601.00002"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Comparison text." {
		t.Errorf("comparison = %q", got)
	}

	if _, err := a.Compare(context.Background(), []string{"2601.00001"}); err == nil {
		t.Error("expected error for fewer than two papers")
	}
	if _, err := a.Compare(context.Background(), []string{"2601.00001", "missing"}); err == nil {
		t.Error("expected error for unknown paper")
	}
}
