package match

import (
	"context"
	"errors"
	"testing"

	"github.com/gramgyan/gramgyan/internal/db"
)

type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	return m.searchKNNFn(ctx, q)
}

func entry(id string, score float64, text string) db.SearchEntry {
	return db.SearchEntry{
		Key:    "gramgyan:report:" + id,
		Score:  score,
		Fields: map[string]string{"solution_text": text},
	}
}

func TestMatchReports_QueryShape(t *testing.T) {
	var got *db.KNNQuery
	s := &mockStore{searchKNNFn: func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{}, nil
	}}

	_, err := New(s, "gramgyan:reports:idx", "gramgyan:report:").
		MatchReports(context.Background(), []float32{0.1}, 0.8, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IndexName != "gramgyan:reports:idx" || got.K != 1 {
		t.Errorf("query = %+v", got)
	}
	if got.Filter != "@validated:{true}" {
		t.Errorf("filter = %q", got.Filter)
	}
}

func TestMatchReports_ThresholdAndOrder(t *testing.T) {
	s := &mockStore{searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
			entry("low", 0.79, "no"),
			entry("best", 0.95, "yes"),
			entry("edge", 0.80, "edge"),
		}}, nil
	}}
	repo := New(s, "idx", "gramgyan:report:")

	got, err := repo.MatchReports(context.Background(), []float32{0.1}, 0.8, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches at or above threshold, got %d", len(got))
	}
	if got[0].ReportID() != "best" || got[1].ReportID() != "edge" {
		t.Errorf("order = %s, %s", got[0].ReportID(), got[1].ReportID())
	}
	if got[0].SolutionText() != "yes" {
		t.Errorf("solution text = %q", got[0].SolutionText())
	}
}

func TestMatchReports_CapsCount(t *testing.T) {
	s := &mockStore{searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Entries: []db.SearchEntry{
			entry("a", 0.99, "a"), entry("b", 0.98, "b"),
		}}, nil
	}}
	got, err := New(s, "idx", "gramgyan:report:").MatchReports(context.Background(), []float32{1}, 0.8, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ReportID() != "a" {
		t.Errorf("got %v", got)
	}
}

func TestMatchReports_BelowThresholdIsEmpty(t *testing.T) {
	s := &mockStore{searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Entries: []db.SearchEntry{entry("a", 0.5, "a")}}, nil
	}}
	got, err := New(s, "idx", "").MatchReports(context.Background(), []float32{1}, 0.8, 1)
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v; want empty", got, err)
	}
}

func TestMatchReports_StoreError(t *testing.T) {
	boom := errors.New("ft.search failed")
	s := &mockStore{searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, boom
	}}
	if _, err := New(s, "idx", "").MatchReports(context.Background(), []float32{1}, 0.8, 1); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestMatchReports_InvalidCount(t *testing.T) {
	if _, err := New(&mockStore{}, "idx", "").MatchReports(context.Background(), []float32{1}, 0.8, 0); err == nil {
		t.Error("expected error for zero count")
	}
}
