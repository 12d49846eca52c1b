package httpsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.VisibilitySource = (*Client)(nil)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// RequestIDHeader carries a per-request ID for correlating server logs.
const RequestIDHeader = "X-Request-ID"

// Client reads from a remote observation source.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit throttles requests to rps per second. rps <= 0 disables
// throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = NewRateLimiter(rps, int(rps)+1)
		}
	}
}

// New creates a client for the source at baseURL, e.g.
// "http://localhost:8080". The API base path is appended.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing source url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("source url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("source url %q: missing host", baseURL)
	}
	u.Path += wire.BasePath

	c := &Client{
		base: u,
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListQueries returns a page of queries.
func (c *Client) ListQueries(
	ctx context.Context,
	filter domain.QueryFilter,
	page domain.PageRequest,
) (domain.Page[domain.VisibilityQuery], error) {
	params := pageParams(page)
	if filter.Category != nil {
		params.Set("category", filter.Category.String())
	}
	if filter.Priority != nil {
		params.Set("priority", filter.Priority.String())
	}
	if filter.Active != nil {
		params.Set("is_active", strconv.FormatBool(*filter.Active))
	}

	var out wire.Paginated[wire.Query]
	if err := c.get(ctx, params, &out, "queries"); err != nil {
		return domain.Page[domain.VisibilityQuery]{}, err
	}
	return wire.PageOf(out, wire.Query.ToDomain), nil
}

// GetQuery retrieves one query.
func (c *Client) GetQuery(ctx context.Context, id int64) (*domain.VisibilityQuery, error) {
	var out wire.Query
	if err := c.get(ctx, nil, &out, "queries", strconv.FormatInt(id, 10)); err != nil {
		return nil, err
	}
	q := out.ToDomain()
	return &q, nil
}

// ListRankings returns a page of observations.
func (c *Client) ListRankings(
	ctx context.Context,
	filter domain.ObservationFilter,
	page domain.PageRequest,
) (domain.Page[domain.RankObservation], error) {
	params := pageParams(page)
	setInt(params, "query_id", filter.QueryID)
	setString(params, "platform", string(filter.Platform))
	setString(params, "brand", filter.Brand)
	setTime(params, "from", filter.From)
	setTime(params, "to", filter.To)

	var out wire.Paginated[wire.Ranking]
	if err := c.get(ctx, params, &out, "rankings"); err != nil {
		return domain.Page[domain.RankObservation]{}, err
	}
	return wire.PageOf(out, wire.Ranking.ToDomain), nil
}

// LatestRankings returns the latest observation per (platform, brand).
func (c *Client) LatestRankings(ctx context.Context, queryID int64) ([]domain.RankObservation, error) {
	params := url.Values{}
	setInt(params, "query_id", queryID)

	var out []wire.Ranking
	if err := c.get(ctx, params, &out, "rankings", "latest"); err != nil {
		return nil, err
	}
	return wire.ToRankings(out), nil
}

// Trends returns a trend series.
func (c *Client) Trends(ctx context.Context, req domain.TrendRequest) ([]domain.TrendPoint, error) {
	params := url.Values{}
	setInt(params, "query_id", req.QueryID)
	if len(req.Brands) > 0 {
		params.Set("brands", strings.Join(req.Brands, ","))
	}
	setTime(params, "from", req.From)
	setTime(params, "to", req.To)
	setString(params, "granularity", string(req.Granularity))

	var out []wire.TrendPoint
	if err := c.get(ctx, params, &out, "rankings", "trends"); err != nil {
		return nil, err
	}
	return wire.ToTrends(out), nil
}

// Score computes one score record.
func (c *Client) Score(ctx context.Context, req domain.ScoreRequest) (*domain.ScoreRecord, error) {
	params := url.Values{}
	setString(params, "period", string(req.Period))
	setTime(params, "from", req.From)
	setTime(params, "to", req.To)

	var out wire.Score
	if err := c.get(ctx, params, &out, "scores", strconv.FormatInt(req.QueryID, 10), req.Brand); err != nil {
		return nil, err
	}
	rec := out.ToDomain()
	return &rec, nil
}

// ListScores returns a page of score records.
func (c *Client) ListScores(
	ctx context.Context,
	filter domain.ScoreFilter,
	page domain.PageRequest,
) (domain.Page[domain.ScoreRecord], error) {
	params := pageParams(page)
	setInt(params, "query_id", filter.QueryID)
	setString(params, "brand", filter.Brand)
	setString(params, "period", string(filter.Period))

	var out wire.Paginated[wire.Score]
	if err := c.get(ctx, params, &out, "scores"); err != nil {
		return domain.Page[domain.ScoreRecord]{}, err
	}
	return wire.PageOf(out, wire.Score.ToDomain), nil
}

// Comparison returns the comparison table.
func (c *Client) Comparison(ctx context.Context, filter domain.ComparisonFilter) ([]domain.ComparisonRow, error) {
	params := url.Values{}
	if filter.Category != nil {
		params.Set("category", filter.Category.String())
	}
	setTime(params, "from", filter.From)
	setTime(params, "to", filter.To)
	setString(params, "period", string(filter.Period))

	var out []wire.ComparisonRow
	if err := c.get(ctx, params, &out, "scores", "comparison"); err != nil {
		return nil, err
	}
	return wire.ToComparison(out), nil
}

// Snapshot retrieves a raw answer snapshot.
func (c *Client) Snapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	var out wire.Snapshot
	if err := c.get(ctx, nil, &out, "snapshots", id); err != nil {
		return nil, err
	}
	snap := out.ToDomain()
	return &snap, nil
}

// get performs one GET and decodes the JSON body into out. Path segments
// are escaped individually.
func (c *Client) get(ctx context.Context, params url.Values, out any, path ...string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &domain.TransportError{Status: http.StatusTooManyRequests, Detail: err.Error()}
		}
	}

	u := c.base.JoinPath(path...)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &domain.TransportError{Detail: "building request: " + err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled) && ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
			return &domain.TransportError{Detail: "request timed out", Err: err}
		default:
			return &domain.TransportError{Detail: err.Error(), Err: err}
		}
	}
	defer resp.Body.Close()
	logger.Debug("GET %s -> %d (%s)", u.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests && c.limiter != nil {
			c.limiter.RecordRateLimit(resp)
		}
		return &domain.TransportError{Status: resp.StatusCode, Detail: errorDetail(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{
			Status: resp.StatusCode,
			Detail: "decoding response: " + err.Error(),
			Err:    domain.ErrSourceUnavailable,
		}
	}
	return nil
}

// errorDetail extracts the server's detail message, falling back to the
// status text.
func errorDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var e wire.ErrorBody
		if json.Unmarshal(body, &e) == nil && e.Detail != "" {
			return e.Detail
		}
	}
	return http.StatusText(resp.StatusCode)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func pageParams(page domain.PageRequest) url.Values {
	params := url.Values{}
	if page.Page > 0 {
		params.Set("page", strconv.Itoa(page.Page))
	}
	if page.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(page.PageSize))
	}
	return params
}

func setString(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func setInt(params url.Values, key string, value int64) {
	if value != 0 {
		params.Set(key, strconv.FormatInt(value, 10))
	}
}

func setTime(params url.Values, key string, value time.Time) {
	if !value.IsZero() {
		params.Set(key, value.UTC().Format(time.RFC3339Nano))
	}
}
