package crawler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"livecrawl/internal/logger"
	"livecrawl/pkg/utils"
)

// AttemptResult records the result of one fetch.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// Ledger keeps the outcome of every fetch made during one phase, so the
// phase can keep going past failures while still reporting them.
// It is filled from a single goroutine after each fan-out completes and is
// not safe for concurrent use.
type Ledger struct {
	attemptLog map[string][]AttemptResult
	phase      string
	order      []string
}

// NewLedger creates an empty ledger for the named phase.
func NewLedger(phase string) *Ledger {
	return &Ledger{
		phase:      phase,
		attemptLog: make(map[string][]AttemptResult),
	}
}

// Phase returns the phase name given to NewLedger.
func (l *Ledger) Phase() string {
	return l.phase
}

// RecordAttempt records the outcome of fetching url. A nil err is a success.
func (l *Ledger) RecordAttempt(url string, err error, duration time.Duration) {
	if _, seen := l.attemptLog[url]; !seen {
		l.order = append(l.order, url)
	}

	result := AttemptResult{
		Timestamp:  time.Now(),
		URL:        url,
		Duration:   duration,
		StatusCode: http.StatusOK,
		Success:    err == nil,
	}

	if err != nil {
		result.Error = err.Error()
		result.StatusCode = 0

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			result.StatusCode = statusErr.Code
		}
	}

	l.attemptLog[url] = append(l.attemptLog[url], result)
}

// GetAttemptLog returns the attempts recorded for url.
func (l *Ledger) GetAttemptLog(url string) []AttemptResult {
	return l.attemptLog[url]
}

// Failures returns the last attempt of every URL that never succeeded, in
// first-seen order.
func (l *Ledger) Failures() []AttemptResult {
	var failed []AttemptResult

	for _, url := range l.order {
		results := l.attemptLog[url]
		if !anySuccess(results) {
			failed = append(failed, results[len(results)-1])
		}
	}

	return failed
}

// GetAttemptStats returns statistics about fetch attempts.
func (l *Ledger) GetAttemptStats() AttemptStats {
	stats := AttemptStats{
		TotalURLs: len(l.attemptLog),
	}

	for _, results := range l.attemptLog {
		stats.TotalAttempts += len(results)

		for _, result := range results {
			if result.Success {
				stats.SuccessfulAttempts++
			} else {
				stats.FailedAttempts++
			}
		}

		if anySuccess(results) {
			stats.SuccessfulURLs++
		} else {
			stats.FailedURLs++
		}
	}

	return stats
}

// LogAttemptSummary logs the phase totals and one line per failed URL.
func (l *Ledger) LogAttemptSummary(log *logger.Logger) {
	stats := l.GetAttemptStats()

	log.Info("fetch summary", "phase", l.phase, "stats", stats.String())

	for _, f := range l.Failures() {
		log.Warn("fetch failed",
			"phase", l.phase,
			"url", f.URL,
			"status", f.StatusCode,
			"error", utils.TruncateString(f.Error, 200),
			"duration", f.Duration,
		)
	}
}

func anySuccess(results []AttemptResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}

	return false
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	TotalURLs          int
	SuccessfulURLs     int
	FailedURLs         int
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"URLs: %d total, %d success, %d failed | Attempts: %d total, %d success, %d failed",
		s.TotalURLs,
		s.SuccessfulURLs,
		s.FailedURLs,
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
	)
}
