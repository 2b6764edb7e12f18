// Package catalog fetches the biobank showcase schema tables over HTTP.
// The analysis core never touches the network; callers hand it the parsed
// row tables this package produces.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/matsen/fieldscope/internal/corpus"
	"github.com/matsen/fieldscope/internal/publication"
	"github.com/matsen/fieldscope/internal/taxonomy"
)

const (
	// ShowcaseURL serves the schema download endpoint for the metadata
	// catalog (fields and category hierarchy).
	ShowcaseURL = "https://biobank.ndph.ox.ac.uk/showcase/scdown.cgi"

	// PublicationsURL serves the publications listing (Schema 19).
	PublicationsURL = "https://biobank.ndph.ox.ac.uk/ukb/scdown.cgi"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit keeps us well below anything the showcase would object to.
	RateLimit = 2.0
)

// Schema ids at the download endpoint.
const (
	schemaFields       = "1"
	schemaCategories   = "2"
	schemaPublications = "19"
)

// Client is a rate-limited HTTP client for the showcase schema endpoints.
type Client struct {
	httpClient      *http.Client
	limiter         *rate.Limiter
	showcaseURL     string
	publicationsURL string
	log             *logrus.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURLs overrides both endpoints (for testing).
func WithBaseURLs(showcase, publications string) ClientOption {
	return func(c *Client) {
		c.showcaseURL = showcase
		c.publicationsURL = publications
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a showcase client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:      &http.Client{Timeout: DefaultTimeout},
		limiter:         rate.NewLimiter(rate.Limit(RateLimit), 1),
		showcaseURL:     ShowcaseURL,
		publicationsURL: PublicationsURL,
		log:             logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DownloadCategories returns the raw category hierarchy table, tab
// separated, for saving to disk.
func (c *Client) DownloadCategories(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx, c.showcaseURL, schemaCategories, "txt")
}

// DownloadFields returns the raw field listing table, tab separated.
func (c *Client) DownloadFields(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx, c.showcaseURL, schemaFields, "txt")
}

// FetchCategories downloads and parses the category hierarchy table.
func (c *Client) FetchCategories(ctx context.Context) ([]taxonomy.Row, error) {
	return c.fetchTable(ctx, c.showcaseURL, schemaCategories, "categories")
}

// FetchFields downloads and parses the field listing table.
func (c *Client) FetchFields(ctx context.Context) ([]taxonomy.Row, error) {
	return c.fetchTable(ctx, c.showcaseURL, schemaFields, "fields")
}

// FetchPublications downloads and parses the publications listing. It tries
// the tab-separated form first and falls back to pseudo-XML, mirroring the
// upstream endpoint's two export formats.
func (c *Client) FetchPublications(ctx context.Context) ([]publication.Publication, error) {
	data, err := c.fetch(ctx, c.publicationsURL, schemaPublications, "txt")
	if err == nil {
		pubs, errs := corpus.ParseTSV(bytesReader(data))
		if len(errs) > 0 {
			c.log.WithField("errors", len(errs)).Warn("skipped malformed publication rows")
		}
		if len(pubs) > 0 {
			return pubs, nil
		}
		c.log.Warn("tab-separated publications export was empty, trying XML")
	} else {
		c.log.WithError(err).Warn("tab-separated publications fetch failed, trying XML")
	}

	data, err = c.fetch(ctx, c.publicationsURL, schemaPublications, "xml")
	if err != nil {
		return nil, fmt.Errorf("fetching publications: %w", err)
	}
	pubs, errs := corpus.ParseXML(bytesReader(data))
	if len(errs) > 0 {
		c.log.WithField("errors", len(errs)).Warn("skipped malformed publication elements")
	}
	return pubs, nil
}

// fetchTable downloads one schema and parses it as a tab-separated row
// table.
func (c *Client) fetchTable(ctx context.Context, base, id, name string) ([]taxonomy.Row, error) {
	data, err := c.fetch(ctx, base, id, "txt")
	if err != nil {
		return nil, fmt.Errorf("fetching %s schema: %w", name, err)
	}
	rows, err := ParseTable(bytesReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s schema: %w", name, err)
	}
	c.log.WithFields(logrus.Fields{"schema": name, "rows": len(rows)}).Info("fetched schema")
	return rows, nil
}

// fetch performs one rate-limited GET of a schema download.
func (c *Client) fetch(ctx context.Context, base, id, format string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	q := u.Query()
	q.Set("fmt", format)
	q.Set("id", id)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	return data, nil
}
