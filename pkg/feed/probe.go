package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/feedkeeper/pkg/domain"
)

var errBodyTooLarge = errors.New("response body exceeds limit")

// statusError is returned by fetch for non-2xx responses
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

// Prober checks whether a feed url responds with a parseable RSS/Atom/JSON feed
type Prober struct {
	client      *http.Client
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
}

// NewProber creates a new feed prober. Each probe is bounded by timeout and reads at most maxBodySize bytes.
func NewProber(timeout time.Duration, userAgent string, maxBodySize int64) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Prober{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:   userAgent,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// Probe fetches and parses the feed at feedURL once. Failures are reported in the result,
// classified as timeout, http, parse or connection errors. A feed with zero items is alive.
func (p *Prober) Probe(ctx context.Context, feedURL string) domain.ProbeResult {
	res, _ := p.probe(ctx, feedURL)
	return res
}

// ProbeCandidate probes a url suggested by search. If it is not a feed but an html page,
// feed links advertised by the page are probed in order and the first alive one is returned.
// The URL of the returned result is the address that was verified.
func (p *Prober) ProbeCandidate(ctx context.Context, candidateURL string) domain.ProbeResult {
	res, page := p.probe(ctx, candidateURL)
	if res.Alive || res.Error != domain.ProbeErrorParse || len(page) == 0 {
		return res
	}

	links, err := feedLinks(page, candidateURL)
	if err != nil || len(links) == 0 {
		return res
	}
	for i, link := range links {
		if i >= maxAutodiscoveryLinks || ctx.Err() != nil {
			break
		}
		if link == candidateURL {
			continue
		}
		if lr := p.Probe(ctx, link); lr.Alive {
			return lr
		}
	}
	return res
}

// probe does a single fetch and parse. The fetched body is returned only when it was
// received but is not a feed, to let the caller look for advertised feed links in it.
func (p *Prober) probe(ctx context.Context, feedURL string) (domain.ProbeResult, []byte) {
	start := time.Now()
	res := domain.ProbeResult{URL: feedURL, CheckedAt: start}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := p.fetch(ctx, feedURL)
	if err != nil {
		res.Error, res.Reason = classify(err), err.Error()
		res.Duration = time.Since(start)
		return res, nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		res.Error, res.Reason = domain.ProbeErrorParse, fmt.Sprintf("parse feed: %v", err)
		res.Duration = time.Since(start)
		return res, body
	}

	res.Alive = true
	res.ArticleCount = len(feed.Items)
	res.Title = feed.Title
	res.Duration = time.Since(start)
	return res, nil
}

// fetch retrieves content from a url, limited to maxBodySize
func (p *Prober) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	setProbeHeaders(req, p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode}
	}

	limit := p.maxBodySize
	if limit <= 0 {
		limit = defaultMaxBodySize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}

// classify maps a fetch error to a probe error kind
func classify(err error) domain.ProbeError {
	var se *statusError
	if errors.As(err, &se) {
		return domain.ProbeErrorHTTP
	}
	if errors.Is(err, errBodyTooLarge) {
		return domain.ProbeErrorParse
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ProbeErrorTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.ProbeErrorTimeout
	}
	return domain.ProbeErrorConnection
}

const (
	defaultTimeout        = 15 * time.Second
	defaultMaxBodySize    = 10 * 1024 * 1024
	maxAutodiscoveryLinks = 3
)
