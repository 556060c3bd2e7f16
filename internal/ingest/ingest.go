// Package ingest pulls trending posts from an external feed on a cron
// schedule and pushes them through the regular posting pipeline.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
)

const (
	userAgent    = "vortexa-ingest-bot/0.1"
	fetchTimeout = 30 * time.Second
)

// PostCreator persists and broadcasts an ingested post.
type PostCreator interface {
	IngestPost(ctx context.Context, title, body, feedName string) (*domain.Post, error)
}

// listing matches the subset of the Reddit listing JSON we consume.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string `json:"title"`
				SelfText string `json:"selftext"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Ingestor fetches the configured feed and creates one post per entry.
// Entries that fail individually are logged and skipped; the run only
// fails when the feed itself is unreachable or unparseable.
type Ingestor struct {
	client  *http.Client
	feedURL string
	creator PostCreator
	cron    *cron.Cron
}

func NewIngestor(feedURL string, creator PostCreator) *Ingestor {
	return &Ingestor{
		client:  &http.Client{Timeout: fetchTimeout},
		feedURL: feedURL,
		creator: creator,
		cron:    cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start schedules periodic runs. The schedule uses standard five-field
// cron syntax evaluated in UTC.
func (i *Ingestor) Start(schedule string) error {
	_, err := i.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		start := time.Now()
		count, err := i.RunOnce(ctx)
		if err != nil {
			slog.Error("Trending ingest run failed", "error", err)
			return
		}
		slog.Info("Trending ingest run completed", "posts", count, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule ingest job: %w", err)
	}

	i.cron.Start()
	slog.Info("Trending ingestor started", "schedule", schedule, "feed", i.feedURL)
	return nil
}

// Stop halts the scheduler. A run already in flight finishes.
func (i *Ingestor) Stop() {
	<-i.cron.Stop().Done()
}

// RunOnce fetches the feed once and returns the number of posts created.
func (i *Ingestor) RunOnce(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.feedURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var feed listing
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return 0, fmt.Errorf("failed to decode feed: %w", err)
	}

	feedName := feedNameFromURL(i.feedURL)
	created := 0
	for _, child := range feed.Data.Children {
		entry := child.Data
		if strings.TrimSpace(entry.Title) == "" {
			continue
		}
		body := entry.SelfText
		if strings.TrimSpace(body) == "" {
			body = entry.Title
		}

		if _, err := i.creator.IngestPost(ctx, entry.Title, body, feedName); err != nil {
			slog.Warn("Failed to ingest feed entry", "title", entry.Title, "error", err)
			continue
		}
		created++
	}
	return created, nil
}

// feedNameFromURL extracts the subreddit part ("r/worldnews") from a
// Reddit listing URL, falling back to the host.
func feedNameFromURL(feedURL string) string {
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return "reddit"
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) >= 2 && segments[0] == "r" {
		return "r/" + segments[1]
	}
	if parsed.Host != "" {
		return parsed.Host
	}
	return "reddit"
}
