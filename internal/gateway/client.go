package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client forwards validated requests to the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// Response is the upstream reply handed back to the proxy handler.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      RetryPolicy{MaxRetries: 2, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second},
		logger:     logger,
	}
}

// UseRedisCache enables short-TTL caching of search responses.
func (c *Client) UseRedisCache(client *redis.Client, ttl time.Duration) {
	c.redis = client
	c.cacheTTL = ttl
}

// Forward replays the request against the backend. GET requests are
// retried on transport errors; search GETs are served from cache when
// possible.
func (c *Client) Forward(ctx context.Context, method, pathAndQuery, userID, requestID string, body []byte) (*Response, error) {
	cacheKey := ""
	if method == http.MethodGet && strings.HasPrefix(pathAndQuery, "/items/search") {
		cacheKey = "search:" + pathAndQuery
		if resp, ok := c.readCache(ctx, cacheKey); ok {
			return resp, nil
		}
	}

	resp, err := c.do(ctx, method, pathAndQuery, userID, requestID, body)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" && resp.Status == http.StatusOK {
		c.writeCache(ctx, cacheKey, resp)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, pathAndQuery, userID, requestID string, body []byte) (*Response, error) {
	attempts := 1
	if method == http.MethodGet {
		attempts += c.retry.MaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retry.NextDelay(attempt - 1)):
			}
		}

		resp, err := c.doOnce(ctx, method, pathAndQuery, userID, requestID, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.logger.Warn().Err(err).Str("path", pathAndQuery).Int("attempt", attempt).Msg("upstream request failed")
	}
	return nil, fmt.Errorf("upstream request failed: %w", lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, pathAndQuery, userID, requestID string, body []byte) (*Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+pathAndQuery, reader)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Sharer-User-Id", userID)
	}
	if requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

func (c *Client) readCache(ctx context.Context, key string) (*Response, bool) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *Client) writeCache(ctx context.Context, key string, resp *Response) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
