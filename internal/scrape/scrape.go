package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/borg-exporter/internal/borg"
	"github.com/MrSnakeDoc/borg-exporter/internal/errs"
	"github.com/MrSnakeDoc/borg-exporter/internal/exposition"
	"github.com/MrSnakeDoc/borg-exporter/internal/logger"
)

// Querier fetches the raw `borg info --json` output for one repository.
type Querier interface {
	Query(ctx context.Context, repo string) ([]byte, error)
}

// Observer is told about every completed scrape.
type Observer interface {
	ObserveScrape(d time.Duration, err error)
}

// Aggregator builds the /metrics body for a fixed, ordered list of
// repositories. It holds no per-request state and is safe for concurrent
// use.
type Aggregator struct {
	repositories []string
	querier      Querier
	location     *time.Location
	observer     Observer
}

type Option func(*Aggregator)

// WithLocation sets the zone borg's local timestamps are read in.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) { a.location = loc }
}

func WithObserver(o Observer) Option {
	return func(a *Aggregator) { a.observer = o }
}

func New(repositories []string, q Querier, opts ...Option) *Aggregator {
	a := &Aggregator{
		repositories: append([]string(nil), repositories...),
		querier:      q,
		location:     time.Local,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scrape runs the pipeline for every repository in order. The first failure
// aborts the scrape and nothing rendered so far is returned.
func (a *Aggregator) Scrape(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	for _, repo := range a.repositories {
		if err := a.scrapeOne(ctx, repo, &buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (a *Aggregator) scrapeOne(ctx context.Context, repo string, buf *bytes.Buffer) error {
	logger.Debug("Reading repo info for %s", repo)

	label, err := borg.Label(repo)
	if err != nil {
		return err
	}

	raw, err := a.querier.Query(ctx, repo)
	if err != nil {
		return err
	}

	doc, err := borg.ParseStatus(raw)
	if err != nil {
		return withRepository(err, repo)
	}

	lastModified, err := borg.NormalizeTimestamp(doc.Repository.LastModified, a.location)
	if err != nil {
		return withRepository(err, repo)
	}

	logger.Debug("Parsed response for %s (id=%s, last_modified=%d)", repo, doc.Repository.ID, lastModified)

	if err := exposition.Render(buf, label, doc.Cache.Stats, lastModified); err != nil {
		return fmt.Errorf("render %s: %w", repo, err)
	}
	return nil
}

// withRepository fills in the repository on coded errors raised by helpers
// that only see a document or a string.
func withRepository(err error, repo string) error {
	var e *errs.Error
	if errors.As(err, &e) && e.Repository == "" {
		e.Repository = repo
	}
	return err
}

// ServeHTTP answers a scrape with the whole body or a bare 500. Failure
// details are logged, never sent to the client.
func (a *Aggregator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger.Info("Received an incoming connection to %s from %s", r.URL.Path, r.RemoteAddr)

	start := time.Now()
	body, err := a.Scrape(r.Context())
	if a.observer != nil {
		a.observer.ObserveScrape(time.Since(start), err)
	}

	if err != nil {
		logger.LogError("An error occurred while scraping: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger.Debug("Successfully generated prometheus output (%d bytes, %s)", len(body), time.Since(start).Truncate(time.Millisecond))

	w.Header().Set("Content-Type", exposition.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
