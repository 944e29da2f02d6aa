package datasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/platesense/platesense/pkg/models"
)

// fakeSource is a canned ReviewSource for aggregator tests.
type fakeSource struct {
	name    string
	reviews []models.Review
	err     error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchReviews(_ context.Context, _ models.Branch, limit int) ([]models.Review, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.reviews
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestAggregatorMergesSources(t *testing.T) {
	now := time.Now()
	agg := NewAggregator(
		&fakeSource{name: "google", reviews: []models.Review{
			{Source: "google", Author: "Jane", Text: "Delicious", PublishedAt: now},
		}},
		&fakeSource{name: "yelp", reviews: []models.Review{
			{Source: "yelp", Author: "Sam", Text: "Slow service", PublishedAt: now.Add(-time.Hour)},
		}},
	)

	got, err := agg.FetchReviews(context.Background(), models.Branch{ID: "b1"}, 0)
	if err != nil {
		t.Fatalf("FetchReviews: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 merged reviews, got %d", len(got))
	}
	if got[0].Author != "Jane" {
		t.Errorf("not sorted newest first: %+v", got)
	}
}

func TestAggregatorSkipsFailedSource(t *testing.T) {
	now := time.Now()
	agg := NewAggregator(
		&fakeSource{name: "google", err: errors.New("upstream down")},
		&fakeSource{name: "yelp", reviews: []models.Review{
			{Source: "yelp", Author: "Sam", Text: "Great", PublishedAt: now},
		}},
	)

	got, err := agg.FetchReviews(context.Background(), models.Branch{ID: "b1"}, 0)
	if err != nil {
		t.Fatalf("one healthy source should be enough: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 review, got %d", len(got))
	}
}

func TestAggregatorAllSourcesFail(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{name: "google", err: errors.New("down")},
		&fakeSource{name: "yelp", err: errors.New("also down")},
	)

	_, err := agg.FetchReviews(context.Background(), models.Branch{ID: "b1"}, 0)
	if err == nil {
		t.Fatal("expected joined error when every source fails")
	}
}

func TestAggregatorUnconfiguredSourceIsSilent(t *testing.T) {
	agg := NewAggregator(
		&fakeSource{name: "feeds", err: ErrNotConfigured},
	)

	got, err := agg.FetchReviews(context.Background(), models.Branch{ID: "b1"}, 0)
	if err != nil {
		t.Fatalf("unconfigured source should not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no reviews, got %d", len(got))
	}
}

func TestDedupeReviews(t *testing.T) {
	now := time.Now()
	reviews := []models.Review{
		{Author: "Jane", Text: "Delicious", URL: "https://a", PublishedAt: now},
		{Author: "Jane", Text: "Delicious", URL: "https://b", PublishedAt: now},
		{Author: "Sam", Text: "Delicious", PublishedAt: now},
	}

	got := dedupeReviews(reviews)
	if len(got) != 2 {
		t.Errorf("expected 2 after dedupe, got %d", len(got))
	}
}

func TestAggregatorLimit(t *testing.T) {
	now := time.Now()
	var revs []models.Review
	for i := 0; i < 5; i++ {
		revs = append(revs, models.Review{
			Author:      "A",
			Text:        string(rune('a' + i)),
			PublishedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	agg := NewAggregator(&fakeSource{name: "google", reviews: revs})

	got, err := agg.FetchReviews(context.Background(), models.Branch{ID: "b1"}, 3)
	if err != nil {
		t.Fatalf("FetchReviews: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("limit not applied: got %d", len(got))
	}
}
