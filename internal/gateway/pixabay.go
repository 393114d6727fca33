package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"photogrid/internal/domain"
	"photogrid/internal/metrics"
)

// maxBodyBytes caps how much of a response is read
const maxBodyBytes = 16 << 20

// Client executes image searches against the Pixabay API. Safe for concurrent use.
// It never retries and never caches.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// Config holds the API client settings.
type Config struct {
	Endpoint      string
	APIKey        string
	Timeout       time.Duration // per request, 0 = no extra deadline
	RatePerMinute int           // 0 = unlimited
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// NewClient creates a Pixabay client.
func NewClient(cfg *Config) *Client {
	c := &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		http:     cfg.HTTPClient,
		logger:   cfg.Logger,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if cfg.RatePerMinute > 0 {
		burst := min(cfg.RatePerMinute, 10)
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), burst)
	}
	return c
}

// hitDTO mirrors one entry of the "hits" array. Required fields are pointers so
// their absence can be detected.
type hitDTO struct {
	ID           *int    `json:"id"`
	WebformatURL *string `json:"webformatURL"`
	PreviewURL   string  `json:"previewURL"`
	PageURL      string  `json:"pageURL"`
	Tags         string  `json:"tags"`
	User         string  `json:"user"`
	Likes        int     `json:"likes"`
}

type searchResponseDTO struct {
	Hits *[]hitDTO `json:"hits"`
}

// Search runs one request. Transport failures, cancellation and non-2xx statuses
// wrap domain.ErrNetwork; schema mismatches wrap domain.ErrDecode.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) ([]domain.Photo, error) {
	start := time.Now()

	photos, err := c.search(ctx, req)

	duration := time.Since(start)
	status := "success"
	if err != nil {
		status = domain.KindOf(err).String()
	}
	metrics.GatewayRequestsTotal.WithLabelValues(status).Inc()
	metrics.GatewayRequestDuration.Observe(duration.Seconds())

	if err != nil {
		c.logger.Debug("search request failed",
			zap.String("params", req.Params().Encode()),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("search request completed",
		zap.String("params", req.Params().Encode()),
		zap.Int("hits", len(photos)),
		zap.Duration("duration", duration))
	return photos, nil
}

func (c *Client) search(ctx context.Context, req domain.SearchRequest) ([]domain.Photo, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("pixabay: rate limit wait: %v: %w", err, domain.ErrNetwork)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("pixabay: invalid endpoint %q: %v: %w", c.endpoint, err, domain.ErrNetwork)
	}
	u.RawQuery = req.RawQuery(c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("pixabay: build request: %v: %w", err, domain.ErrNetwork)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// url.Error carries the full URL including the key
		return nil, fmt.Errorf("pixabay: request failed: %v: %w", unwrapURLError(err), domain.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("pixabay: status %d: %w", resp.StatusCode, domain.ErrNetwork)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("pixabay: read body: %v: %w", err, domain.ErrNetwork)
	}

	return decode(body)
}

func decode(body []byte) ([]domain.Photo, error) {
	var dto searchResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("pixabay: decode response: %v: %w", err, domain.ErrDecode)
	}
	if dto.Hits == nil {
		return nil, fmt.Errorf("pixabay: response has no hits: %w", domain.ErrDecode)
	}

	photos := make([]domain.Photo, 0, len(*dto.Hits))
	for i, h := range *dto.Hits {
		if h.ID == nil || h.WebformatURL == nil {
			return nil, fmt.Errorf("pixabay: hit %d lacks id or webformatURL: %w", i, domain.ErrDecode)
		}
		photos = append(photos, domain.Photo{
			ID:         *h.ID,
			ImageURL:   *h.WebformatURL,
			PreviewURL: h.PreviewURL,
			PageURL:    h.PageURL,
			Tags:       h.Tags,
			User:       h.User,
			Likes:      h.Likes,
		})
	}
	return photos, nil
}

func unwrapURLError(err error) error {
	if ue, ok := err.(*url.Error); ok {
		return ue.Err
	}
	return err
}
