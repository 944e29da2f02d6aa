// Package reviews scores customer review sentiment with a keyword
// dictionary. It is fully offline and deterministic; when an LLM backend
// is configured the agent layer layers richer commentary on top, but the
// numbers always come from here.
package reviews

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/platesense/platesense/pkg/models"
)

// positive / negative keyword dictionaries (lowercase).
var positiveWords = map[string]float64{
	"delicious": 0.7, "amazing": 0.6, "excellent": 0.6, "fantastic": 0.6,
	"fresh": 0.4, "friendly": 0.4, "attentive": 0.4, "generous": 0.4,
	"cozy": 0.3, "great value": 0.5, "will be back": 0.6, "favourite": 0.5,
	"favorite": 0.5, "recommend": 0.5, "perfect": 0.5, "best": 0.4,
	"tasty": 0.5, "quick": 0.3, "clean": 0.3, "love": 0.4,
}

var negativeWords = map[string]float64{
	"cold": 0.4, "slow": 0.4, "rude": 0.7, "dirty": 0.7,
	"bland": 0.5, "overpriced": 0.6, "stale": 0.6, "soggy": 0.5,
	"disappointing": 0.6, "terrible": 0.7, "awful": 0.7, "worst": 0.7,
	"never again": 0.8, "undercooked": 0.7, "overcooked": 0.5,
	"waited": 0.3, "ignored": 0.6, "tiny portion": 0.5, "greasy": 0.4,
	"food poisoning": 0.9,
}

// ScoreText returns a sentiment score for a block of review text.
// Score ranges from -1.0 (scathing) to +1.0 (glowing).
func ScoreText(text string) (score float64, confidence float64) {
	lower := strings.ToLower(text)

	posScore := 0.0
	negScore := 0.0
	matches := 0

	for word, weight := range positiveWords {
		if strings.Contains(lower, word) {
			posScore += weight
			matches++
		}
	}

	for word, weight := range negativeWords {
		if strings.Contains(lower, word) {
			negScore += weight
			matches++
		}
	}

	if matches == 0 {
		return 0, 0.1 // no signal
	}

	total := posScore + negScore
	if total == 0 {
		return 0, 0.1
	}

	// Net score normalized to -1..+1.
	score = (posScore - negScore) / total

	// Confidence grows with keyword matches.
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)

	return score, confidence
}

// ScoreReview scores one review. When the review carries a star rating the
// text score is blended with a rating-derived score, weighting the rating
// higher since it is explicit.
func ScoreReview(r models.Review) models.ReviewScore {
	score, confidence := ScoreText(r.Text)

	if r.Rating > 0 {
		ratingScore := (r.Rating - 3) / 2 // 1 star = -1, 5 stars = +1
		score = 0.6*ratingScore + 0.4*score
		if confidence < 0.6 {
			confidence = 0.6
		}
	}

	return models.ReviewScore{
		Source:      r.Source,
		Excerpt:     excerpt(r.Text, 120),
		Score:       score,
		Confidence:  confidence,
		URL:         r.URL,
		PublishedAt: r.PublishedAt,
	}
}

// Aggregate computes a time-weighted aggregate sentiment from scored
// reviews. Weight halves every 7 days; diners forget faster than ledgers.
func Aggregate(branchID string, scores []models.ReviewScore) models.ReviewSentiment {
	if len(scores) == 0 {
		return models.ReviewSentiment{
			BranchID:  branchID,
			Label:     "No reviews",
			Timestamp: time.Now(),
		}
	}

	now := time.Now()
	weightedSum := 0.0
	totalWeight := 0.0
	confSum := 0.0

	for _, s := range scores {
		age := now.Sub(s.PublishedAt).Hours()
		if age < 0 {
			age = 0
		}
		timeWeight := math.Exp(-0.693 * age / (24 * 7))
		w := timeWeight * s.Confidence

		weightedSum += s.Score * w
		totalWeight += w
		confSum += s.Confidence
	}

	avgScore := 0.0
	if totalWeight > 0 {
		avgScore = weightedSum / totalWeight
	}

	label := "Mixed"
	switch {
	case avgScore > 0.4:
		label = "Loved"
	case avgScore > 0.1:
		label = "Positive"
	case avgScore < -0.4:
		label = "Struggling"
	case avgScore < -0.1:
		label = "Negative"
	}

	return models.ReviewSentiment{
		BranchID:    branchID,
		Score:       avgScore,
		Confidence:  confSum / float64(len(scores)),
		Label:       label,
		Scores:      scores,
		ReviewCount: len(scores),
		Timestamp:   now,
	}
}

// Analyze scores every review and aggregates them for a branch.
func Analyze(branchID string, revs []models.Review) models.ReviewSentiment {
	scores := make([]models.ReviewScore, 0, len(revs))
	for _, r := range revs {
		scores = append(scores, ScoreReview(r))
	}
	return Aggregate(branchID, scores)
}

// Summary renders a one-line human summary, e.g. for the coach agent's
// context block.
func Summary(s models.ReviewSentiment) string {
	if s.ReviewCount == 0 {
		return "No recent customer reviews."
	}
	return s.Label + " customer sentiment across " + strconv.Itoa(s.ReviewCount) +
		" recent reviews (score " + strconv.FormatFloat(s.Score, 'f', 2, 64) + ")."
}

func excerpt(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	cut := strings.LastIndex(text[:max], " ")
	if cut <= 0 {
		cut = max
	}
	return text[:cut] + "…"
}
