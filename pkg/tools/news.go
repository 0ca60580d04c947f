package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultNewsFeedURL is the Yahoo Finance headline RSS feed. %s receives the
// query (a ticker or free-text search).
const DefaultNewsFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s"

const (
	maxHeadlines    = 10
	maxFeedBytes    = 1 << 20
	newsFetchWindow = 15 * time.Second
)

// NewsClient fetches headlines from an RSS feed. Implements NewsSource.
type NewsClient struct {
	feedURL    string
	httpClient *http.Client
}

// NewNewsClient creates a client for the given feed URL template
// (DefaultNewsFeedURL when empty).
func NewNewsClient(feedURL string) *NewsClient {
	if feedURL == "" {
		feedURL = DefaultNewsFeedURL
	}
	return &NewsClient{
		feedURL:    feedURL,
		httpClient: &http.Client{Timeout: newsFetchWindow},
	}
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	PubDate string `xml:"pubDate"`
}

// Headlines fetches up to maxHeadlines recent headlines matching query.
func (c *NewsClient) Headlines(ctx context.Context, query string) (string, error) {
	if query == "" {
		query = "market"
	}
	feedURL := fmt.Sprintf(c.feedURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("build news request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("news feed rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("news feed returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", fmt.Errorf("read news feed: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", fmt.Errorf("parse news feed: %w", err)
	}
	if len(feed.Channel.Items) == 0 {
		return fmt.Sprintf("No recent headlines for %q.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent headlines for %q:\n", query)
	for i, item := range feed.Channel.Items {
		if i == maxHeadlines {
			break
		}
		line := item.Title
		if item.PubDate != "" {
			line += " (" + item.PubDate + ")"
		}
		b.WriteString("- " + line + "\n")
	}
	return b.String(), nil
}
