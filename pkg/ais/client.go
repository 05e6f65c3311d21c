package ais

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/httpclient"
	"github.com/gNutty/vesselradar/pkg/metrics"
	"github.com/gNutty/vesselradar/pkg/ratelimit"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	operationLookup = "lookup"
	operationSearch = "search"
)

type Config struct {
	BaseURL string
	Host    string
	APIKey  string
	// Timeout bounds a call when the caller's context has no deadline.
	Timeout time.Duration
}

// Limiter guards the provider quota. Reserve returns an error when no request
// may be made right now.
type Limiter interface {
	Reserve(ctx context.Context) error
	Backoff(ctx context.Context, d time.Duration)
}

// Client is the RapidAPI vessel finder adapter. Each method makes exactly one
// HTTP request and never retries.
type Client struct {
	http       *httpclient.Client
	config     Config
	limiter    Limiter
	normalizer *Normalizer
	logger     ectologger.Logger
	now        func() time.Time
}

func NewClient(httpClient *httpclient.Client, config Config, limiter Limiter, logger ectologger.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		http:       httpClient,
		config:     config,
		limiter:    limiter,
		normalizer: NewNormalizer(),
		logger:     logger,
		now:        time.Now,
	}
}

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool {
	return c.config.APIKey != ""
}

// LookupByID fetches the current position of one vessel. A record without
// coordinates is ErrNoData.
func (c *Client) LookupByID(ctx context.Context, trackingID string) (*Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "AISClient.LookupByID")
	defer span.End()
	span.SetAttributes(attribute.String("ais.tracking_id", trackingID))

	body, err := c.fetch(ctx, operationLookup, url.Values{"mmsi": {trackingID}})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidates := c.normalizer.Candidates(body)
	if len(candidates) == 0 {
		return nil, ErrNoData
	}

	match, found := candidates[0], false
	for _, candidate := range candidates {
		if candidate.TrackingID == trackingID {
			match, found = candidate, true
			break
		}
	}
	// an unlabelled record is taken as the one asked for, another vessel is not
	if !found && match.TrackingID != "" {
		return nil, fmt.Errorf("%w: provider answered for %s instead of %s", ErrNoData, match.TrackingID, trackingID)
	}
	if match.TrackingID == "" {
		match.TrackingID = trackingID
	}
	if !match.HasPosition() {
		return nil, fmt.Errorf("%w: vessel %s has no coordinates", ErrNoData, trackingID)
	}

	return &match, nil
}

// SearchByName returns every vessel the provider matched for name, in
// provider order.
func (c *Client) SearchByName(ctx context.Context, name string) ([]Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "AISClient.SearchByName")
	defer span.End()
	span.SetAttributes(attribute.String("ais.vessel_name", name))

	body, err := c.fetch(ctx, operationSearch, url.Values{"name": {name}})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidates := c.normalizer.Candidates(body)
	span.SetAttributes(attribute.Int("ais.candidates", len(candidates)))
	return candidates, nil
}

func (c *Client) fetch(ctx context.Context, operation string, params url.Values) (any, error) {
	log := c.logger.WithContext(ctx).WithField("operation", operation)

	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}

	if c.limiter != nil {
		if err := c.limiter.Reserve(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}

	if _, ok := ctx.Deadline(); !ok && c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	headers := map[string]string{
		"x-rapidapi-key":  c.config.APIKey,
		"x-rapidapi-host": c.config.Host,
		"Accept":          "application/json",
	}

	start := c.now()
	resp, err := c.http.Get(ctx, c.config.BaseURL+"/search?"+params.Encode(), headers)
	if err != nil {
		metrics.RecordAISRequest(operation, "error", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordAISRequest(operation, strconv.Itoa(resp.StatusCode), resp.Duration.Seconds())

	if resp.StatusCode == http.StatusTooManyRequests {
		if retryAfter, perr := ratelimit.ParseRetryAfter(resp.Header.Get("Retry-After"), c.now()); perr == nil && c.limiter != nil {
			c.limiter.Backoff(ctx, retryAfter)
		}
		log.Warn("AIS provider throttled the request")
		return nil, fmt.Errorf("%w: provider returned 429", ErrRateLimited)
	}
	if !resp.IsSuccess() {
		log.WithField("status", resp.StatusCode).Warn("AIS provider returned an error status")
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := resp.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	if body == nil {
		return nil, ErrNoData
	}
	return body, nil
}
