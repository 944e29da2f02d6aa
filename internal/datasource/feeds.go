package datasource

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/platesense/platesense/pkg/models"
)

// ReviewFeed is one RSS/Atom feed carrying reviews for a branch.
type ReviewFeed struct {
	Source   string // e.g. "google", "tripadvisor"
	BranchID string
	URL      string
}

// FeedReviews pulls reviews from configured RSS/Atom feeds. Most review
// platforms expose per-location feeds or can be bridged through one.
type FeedReviews struct {
	feeds   []ReviewFeed
	cache   *Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// NewFeedReviews creates a feed-backed review source.
func NewFeedReviews(feeds []ReviewFeed) *FeedReviews {
	return &FeedReviews{
		feeds:   feeds,
		cache:   NewCache(15 * time.Minute),
		limiter: NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (f *FeedReviews) Name() string { return "Review Feeds" }

// FetchReviews returns recent reviews for the branch from all feeds
// configured for it. Failed feeds are skipped; an error is returned only
// when the branch has no feeds at all.
func (f *FeedReviews) FetchReviews(ctx context.Context, branch models.Branch, limit int) ([]models.Review, error) {
	cacheKey := fmt.Sprintf("feeds:%s:%d", branch.ID, limit)
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.([]models.Review), nil
	}

	configured := false
	var all []models.Review
	for _, feed := range f.feeds {
		if feed.BranchID != branch.ID {
			continue
		}
		configured = true
		reviews, err := f.fetchFeed(ctx, feed)
		if err != nil {
			// Non-critical: skip failed feeds.
			continue
		}
		all = append(all, reviews...)
	}
	if !configured {
		return nil, ErrNotConfigured
	}

	sortReviewsByDate(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	f.cache.Set(cacheKey, all)
	return all, nil
}

// fetchFeed parses one feed and converts its items to reviews.
func (f *FeedReviews) fetchFeed(ctx context.Context, feed ReviewFeed) ([]models.Review, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	parsed, err := f.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Source, err)
	}

	return feedItemsToReviews(parsed, feed.Source), nil
}

// feedItemsToReviews maps parsed feed items onto Review records. Star
// ratings are recovered from the item title or body when present.
func feedItemsToReviews(feed *gofeed.Feed, source string) []models.Review {
	reviews := make([]models.Review, 0, len(feed.Items))
	for _, item := range feed.Items {
		text := cleanHTML(item.Description)
		if text == "" {
			text = item.Title
		}
		r := models.Review{
			Source: source,
			Text:   text,
			URL:    item.Link,
			Rating: extractRating(item.Title + " " + item.Description),
		}
		if item.Author != nil {
			r.Author = item.Author.Name
		}
		if item.PublishedParsed != nil {
			r.PublishedAt = *item.PublishedParsed
		}
		reviews = append(reviews, r)
	}
	return reviews
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

var (
	ratingFraction = regexp.MustCompile(`(\d(?:\.\d)?)\s*(?:/|out of)\s*5`)
	ratingStars    = regexp.MustCompile(`★+`)
	ratingLabel    = regexp.MustCompile(`[Rr]at(?:ed|ing):?\s*(\d(?:\.\d)?)`)
)

// extractRating recovers a 1..5 star rating from free text. Returns 0 when
// no rating can be found.
func extractRating(text string) float64 {
	if m := ratingFraction.FindStringSubmatch(text); m != nil {
		return clampRating(parseFloat(m[1]))
	}
	if m := ratingLabel.FindStringSubmatch(text); m != nil {
		return clampRating(parseFloat(m[1]))
	}
	if m := ratingStars.FindString(text); m != "" {
		return clampRating(float64(len([]rune(m))))
	}
	return 0
}

func clampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// sortReviewsByDate sorts reviews by published date (newest first).
// Simple insertion sort — fine for small slices.
func sortReviewsByDate(reviews []models.Review) {
	for i := 1; i < len(reviews); i++ {
		key := reviews[i]
		j := i - 1
		for j >= 0 && reviews[j].PublishedAt.Before(key.PublishedAt) {
			reviews[j+1] = reviews[j]
			j--
		}
		reviews[j+1] = key
	}
}
