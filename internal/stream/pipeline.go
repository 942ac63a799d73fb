package stream

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"livecrawl/internal/config"
	"livecrawl/internal/crawler"
	"livecrawl/internal/fanout"
	"livecrawl/internal/logger"
	"livecrawl/internal/models"
	"livecrawl/pkg/datestr"
	"livecrawl/pkg/sanitize"
	"livecrawl/pkg/utils"
)

// DateSource looks up the upload date of a video from its detail page.
type DateSource interface {
	FetchUploadDate(ctx context.Context, pageURL string) (string, error)
}

// Options configures a Pipeline.
type Options struct {
	Now         func() time.Time
	Filter      Filter
	Strip       []string
	Concurrency int
}

// OptionsFromConfig builds pipeline options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Filter: Filter{
			Marker:  cfg.Filter.Marker,
			Keyword: cfg.Filter.Keyword,
		},
		Strip:       cfg.Filter.Strip,
		Concurrency: cfg.Crawler.Concurrency,
	}
}

// Pending marks a stream record whose title carried no date.
type Pending struct {
	URL   string
	Index int
}

// Report summarises one pipeline run.
type Report struct {
	Ledger    *crawler.Ledger
	Collected int
	Matched   int
	Pending   int
	Recovered int
	Fallback  int
}

// Pipeline filters submissions, cleans their titles and dates every record,
// falling back to detail pages for titles without a date.
type Pipeline struct {
	source      DateSource
	log         *logger.Logger
	now         func() time.Time
	filter      Filter
	strip       []string
	concurrency int
}

// NewPipeline creates a pipeline that recovers missing dates through source.
func NewPipeline(source DateSource, opts Options, log *logger.Logger) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = fanout.DefaultLimit
	}

	return &Pipeline{
		source:      source,
		log:         log,
		now:         opts.Now,
		filter:      opts.Filter,
		strip:       opts.Strip,
		concurrency: opts.Concurrency,
	}
}

// Run builds stream records from records and recovers every missing date.
// Every returned record has a non-empty Date.
func (p *Pipeline) Run(ctx context.Context, records []models.SubmissionRecord) ([]models.StreamRecord, *Report) {
	streams, pending := p.Build(records)

	report := &Report{
		Collected: len(records),
		Matched:   len(streams),
		Pending:   len(pending),
	}

	p.log.Info("filtered submissions",
		"collected", report.Collected,
		"matched", report.Matched,
		"pending", report.Pending,
	)

	report.Ledger, report.Recovered, report.Fallback = p.Recover(ctx, streams, pending)

	return streams, report
}

// Build keeps the records matching the filter and converts them in order.
// Records whose title yields no date are returned as pending.
func (p *Pipeline) Build(records []models.SubmissionRecord) ([]models.StreamRecord, []Pending) {
	var (
		streams []models.StreamRecord
		pending []Pending
	)

	for _, rec := range records {
		if !p.filter.Match(rec.Title) {
			continue
		}

		title := sanitize.Sanitize(strings.TrimSpace(rec.Title))
		date := datestr.Extract(title)
		title = withDate(strings.TrimSpace(utils.RemoveTokens(title, p.strip)), date)

		if date == "" {
			pending = append(pending, Pending{Index: len(streams), URL: rec.URL})
		}

		streams = append(streams, models.StreamRecord{
			Title: title,
			URL:   rec.URL,
			Date:  date,
		})
	}

	return streams, pending
}

// Recover fetches the detail page of every pending record concurrently and
// stores its upload date, or today's date when the page could not supply one.
// The date is appended to the title again, after the empty " ()" left by
// Build. It returns the fetch ledger and the recovered and fallback counts.
func (p *Pipeline) Recover(ctx context.Context, streams []models.StreamRecord, pending []Pending) (*crawler.Ledger, int, int) {
	ledger := crawler.NewLedger("recovery")
	if len(pending) == 0 {
		return ledger, 0, 0
	}

	p.log.Info("recovering dates from detail pages", "urls", len(pending), "concurrency", p.concurrency)

	urls := make([]string, len(pending))
	for i, pend := range pending {
		urls[i] = pend.URL
	}

	results := fanout.FetchAll(ctx, urls, p.concurrency, p.source.FetchUploadDate)
	today := p.now().Format(datestr.Layout)

	recovered, fallback := 0, 0

	for i, res := range results {
		ledger.RecordAttempt(urls[i], res.Err, res.Duration)

		date := res.Value
		if res.Err != nil || date == "" {
			date = today
			fallback++

			p.log.Log(ctx, slog.LevelDebug, "falling back to today", "url", urls[i], "error", res.Err)
		} else {
			recovered++
		}

		rec := &streams[pending[i].Index]
		rec.Date = date
		rec.Title = withDate(rec.Title, date)
	}

	p.log.Info("dates recovered", "recovered", recovered, "fallback_today", fallback)

	return ledger, recovered, fallback
}

func withDate(title, date string) string {
	return title + " (" + date + ")"
}
