// Package trends resolves the category/topic pairs a prediction cycle
// generates against, from the Google Trends RSS feed with a local
// randomized fallback catalog.
package trends

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mmcdole/gofeed"

	"github.com/futurizm/futurizm/internal/model"
)

const (
	// DefaultFeedURL is the official Google Trends RSS feed for the US.
	DefaultFeedURL = "https://trends.google.com/trending/rss?geo=US"

	userAgent = "Mozilla/5.0 (compatible; FuturizmBot/1.0)"

	// A cycle needs four categories of three topics each.
	categoriesPerCycle = 4
	topicsPerCategory  = 3
)

// GoogleTrends fetches trending categories from the Google Trends RSS feed.
type GoogleTrends struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewGoogleTrends creates a trends source reading from feedURL
// (DefaultFeedURL when empty).
func NewGoogleTrends(feedURL string) *GoogleTrends {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: 15 * time.Second}

	return &GoogleTrends{
		feedURL: feedURL,
		parser:  parser,
	}
}

// trendItem is one entry from the feed with its traffic estimate.
type trendItem struct {
	title   string
	traffic int
}

// TrendingCategories fetches the feed and groups the top trends into
// four categories of three topics each.
func (g *GoogleTrends) TrendingCategories(ctx context.Context) ([]model.TrendingCategory, error) {
	feed, err := g.parser.ParseURLWithContext(g.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trends feed: %w", err)
	}

	trends := collectTrends(feed)
	if len(trends) == 0 {
		return nil, fmt.Errorf("no trends found in feed")
	}

	return groupTrends(trends), nil
}

// collectTrends extracts trend titles and approximate traffic from the
// feed's ht: extension fields.
func collectTrends(feed *gofeed.Feed) []trendItem {
	trends := make([]trendItem, 0, len(feed.Items))

	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		traffic := 0
		if ext, ok := item.Extensions["ht"]["approx_traffic"]; ok && len(ext) > 0 {
			traffic = parseTraffic(ext[0].Value)
		}

		trends = append(trends, trendItem{title: title, traffic: traffic})
	}

	return trends
}

// parseTraffic turns a traffic estimate like "2,000,000+" into a number.
func parseTraffic(raw string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// groupTrends sorts trends by traffic, takes the top twelve, and slices
// them into four categories of three topics. The category label is the
// first significant word of the category's leading trend.
func groupTrends(trends []trendItem) []model.TrendingCategory {
	sorted := make([]trendItem, len(trends))
	copy(sorted, trends)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].traffic > sorted[j].traffic
	})

	limit := categoriesPerCycle * topicsPerCategory
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	var categories []model.TrendingCategory
	for i := 0; i < categoriesPerCycle; i++ {
		start := i * topicsPerCategory
		if start >= len(sorted) {
			break
		}
		end := start + topicsPerCategory
		if end > len(sorted) {
			end = len(sorted)
		}

		group := sorted[start:end]
		topics := make([]string, 0, len(group))
		for _, t := range group {
			topics = append(topics, t.title)
		}

		categories = append(categories, model.TrendingCategory{
			Name:   categoryName(group[0].title, i),
			Topics: topics,
		})
	}

	// Pad a thin feed with generic entries so a cycle always sees four.
	for i := len(categories); i < categoriesPerCycle; i++ {
		categories = append(categories, fallbackCatalog[i])
	}

	return categories
}

var genericCategoryNames = [categoriesPerCycle]string{"Trending", "Popular", "Hot", "Viral"}

// categoryName derives a category label from a trend title: the first
// alphabetic word longer than two characters, title-cased.
func categoryName(title string, index int) string {
	for _, word := range strings.Fields(title) {
		if len(word) <= 2 {
			continue
		}
		r := rune(word[0])
		if !unicode.IsLetter(r) {
			continue
		}
		return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return genericCategoryNames[index%categoriesPerCycle]
}
