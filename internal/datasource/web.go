package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/platesense/platesense/pkg/models"
)

// ReviewPage is one scrapeable review listing page for a branch.
type ReviewPage struct {
	Source   string
	BranchID string
	URL      string
}

// WebReviews scrapes review listing pages that expose no feed. It expects
// the common listing markup: one container per review with rating, body and
// author nodes.
type WebReviews struct {
	pages   []ReviewPage
	cache   *Cache
	limiter *RateLimiter
}

// NewWebReviews creates a scraping review source.
func NewWebReviews(pages []ReviewPage) *WebReviews {
	return &WebReviews{
		pages:   pages,
		cache:   NewCache(30 * time.Minute),
		limiter: NewRateLimiter(1, 2*time.Second), // polite: 1 req / 2s
	}
}

// Name returns the data source name.
func (w *WebReviews) Name() string { return "Review Pages" }

// FetchReviews scrapes every page configured for the branch.
func (w *WebReviews) FetchReviews(ctx context.Context, branch models.Branch, limit int) ([]models.Review, error) {
	cacheKey := fmt.Sprintf("web:%s:%d", branch.ID, limit)
	if cached, ok := w.cache.Get(cacheKey); ok {
		return cached.([]models.Review), nil
	}

	configured := false
	var all []models.Review
	for _, page := range w.pages {
		if page.BranchID != branch.ID {
			continue
		}
		configured = true
		reviews, err := w.scrapePage(ctx, page)
		if err != nil {
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

	w.cache.SetWithTTL(cacheKey, all, 30*time.Minute)
	return all, nil
}

// scrapePage fetches and parses one listing page.
func (w *WebReviews) scrapePage(ctx context.Context, page ReviewPage) ([]models.Review, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := doGet(ctx, page.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", page.Source, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", page.Source, err)
	}

	return parseReviewListing(doc, page.Source, page.URL), nil
}

// parseReviewListing extracts reviews from a parsed listing document.
func parseReviewListing(doc *goquery.Document, source, pageURL string) []models.Review {
	var reviews []models.Review
	doc.Find(".review, [itemprop=review]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Find(".review-text, .review-body, [itemprop=reviewBody]").Text())
		if text == "" {
			return
		}

		r := models.Review{
			Source: source,
			Text:   text,
			URL:    pageURL,
			Author: strings.TrimSpace(sel.Find(".review-author, [itemprop=author]").Text()),
		}

		ratingText := strings.TrimSpace(sel.Find(".review-rating, [itemprop=ratingValue]").Text())
		if v, ok := sel.Find("[itemprop=ratingValue]").Attr("content"); ok {
			ratingText = v
		}
		r.Rating = clampRating(parseFloat(ratingText))
		if r.Rating == 0 {
			r.Rating = extractRating(ratingText)
		}

		if dateText, ok := sel.Find("[itemprop=datePublished]").Attr("content"); ok {
			if ts, err := time.Parse("2006-01-02", dateText); err == nil {
				r.PublishedAt = ts
			}
		}

		reviews = append(reviews, r)
	})
	return reviews
}
