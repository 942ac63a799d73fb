// Package crawler fetches the submission listing of one account and the
// detail pages of individual videos.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"livecrawl/internal/config"
	"livecrawl/internal/fanout"
	"livecrawl/internal/logger"
	"livecrawl/internal/models"
)

// Client lists, fetches and decodes listing pages through one shared Session.
type Client struct {
	session *Session
	log     *logger.Logger
	cfg     config.CrawlerConfig
}

// NewClient creates a client with its own Session.
func NewClient(cfg config.CrawlerConfig, log *logger.Logger) *Client {
	return NewClientWithSession(NewSession(cfg), cfg, log)
}

// NewClientWithSession creates a client around an existing Session.
func NewClientWithSession(session *Session, cfg config.CrawlerConfig, log *logger.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = config.DefaultPageSize
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = fanout.DefaultLimit
	}

	if cfg.DetailURL == "" {
		cfg.DetailURL = config.DefaultDetailURL
	}

	return &Client{
		session: session,
		log:     log,
		cfg:     cfg,
	}
}

// Collection is everything gathered from the listing pages of one account.
// Sampling holds the page-1 request made by ListPages; Ledger holds the
// fan-out over every page, page 1 included.
type Collection struct {
	ListErr     error
	Sampling    *Ledger
	Ledger      *Ledger
	Records     []models.SubmissionRecord
	ItemCount   int
	PageCount   int
	FailedPages int
}

// Collect lists the account's pages, fetches them concurrently and flattens
// their videos in page order. Failures never abort the crawl: a listing
// failure yields an empty Collection with ListErr set, a failed page
// contributes no records and is counted in FailedPages.
func (c *Client) Collect(ctx context.Context, accountID int64) *Collection {
	ledger := NewLedger("listing")
	col := &Collection{Sampling: NewLedger("sampling"), Ledger: ledger}

	start := time.Now()

	pages, err := c.ListPages(ctx, accountID)
	col.Sampling.RecordAttempt(c.PageURL(accountID, 1), err, time.Since(start))

	if err != nil {
		c.log.Error("failed to list pages, continuing with none", "account", accountID, "error", err)

		col.ListErr = err

		return col
	}

	col.ItemCount = pages.ItemCount
	col.PageCount = len(pages.URLs)

	c.log.Info("fetching listing pages",
		"account", accountID,
		"items", pages.ItemCount,
		"pages", len(pages.URLs),
		"concurrency", c.cfg.Concurrency,
	)

	results := fanout.FetchAll(ctx, pages.URLs, c.cfg.Concurrency, c.FetchPage)

	for i, res := range results {
		ledger.RecordAttempt(pages.URLs[i], res.Err, res.Duration)

		if res.OK() {
			col.Records = append(col.Records, res.Value...)
		}
	}

	col.FailedPages = fanout.Errors(results)

	c.log.Info("listing pages fetched",
		"records", len(col.Records),
		"failed_pages", col.FailedPages,
	)

	return col
}

// FetchPage fetches one listing page and converts its videos to records.
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]models.SubmissionRecord, error) {
	resp, err := c.session.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	listing, err := decodeListing(resp.Body)
	if err != nil {
		return nil, err
	}

	records := make([]models.SubmissionRecord, 0, len(listing.Data.VList))
	for _, video := range listing.Data.VList {
		records = append(records, models.SubmissionRecord{
			Title: video.Title,
			AID:   video.AID,
			URL:   c.VideoURL(video.AID),
		})
	}

	return records, nil
}

// VideoURL returns the detail page URL of a video.
func (c *Client) VideoURL(aid int64) string {
	return fmt.Sprintf(c.cfg.DetailURL, aid)
}

func decodeListing(body []byte) (*models.ListingResponse, error) {
	var listing models.ListingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedListing, err)
	}

	if listing.Code != 0 {
		return nil, fmt.Errorf("%w: api code %d: %s", ErrMalformedListing, listing.Code, listing.Message)
	}

	return &listing, nil
}
