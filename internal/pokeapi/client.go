package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shaiso/pokeflow/internal/domain"
	"github.com/shaiso/pokeflow/internal/telemetry"
)

// Ресурсы PokeAPI.
const (
	ResourcePokemon        = "pokemon"
	ResourceEvolutionChain = "evolution-chain"
	ResourceType           = "type"
)

// Значения по умолчанию.
const (
	DefaultBaseURL      = "https://pokeapi.co/api/v2"
	defaultTimeout      = 30 * time.Second
	defaultMaxAttempts  = 4
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 10 * time.Second
	maxResponseBody     = 10 * 1024 * 1024 // 10 MB
	maxErrorBody        = 200
)

// Client — клиент PokeAPI.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cache   Cache
	logger  *slog.Logger

	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// Config — конфигурация Client.
type Config struct {
	// BaseURL — адрес API (default: DefaultBaseURL).
	BaseURL string

	// HTTPClient — HTTP клиент (default: с таймаутом 30s).
	HTTPClient *http.Client

	// RPS — запросов в секунду; <= 0 — без ограничения.
	RPS float64

	// Cache — кэш ответов (опционально).
	Cache Cache

	// Retry: количество попыток и границы экспоненциальной задержки.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	Logger *slog.Logger
}

// New создаёт новый Client.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(1, int(cfg.RPS)))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:      baseURL,
		http:         httpClient,
		limiter:      limiter,
		cache:        cfg.Cache,
		logger:       logger,
		maxAttempts:  cfg.MaxAttempts,
		initialDelay: cfg.InitialDelay,
		maxDelay:     cfg.MaxDelay,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.initialDelay <= 0 {
		c.initialDelay = defaultInitialDelay
	}
	if c.maxDelay <= 0 {
		c.maxDelay = defaultMaxDelay
	}

	return c
}

// listPage — страница списка ресурсов.
type listPage struct {
	Count   int                    `json:"count"`
	Next    *string                `json:"next"`
	Results []domain.NamedResource `json:"results"`
}

// List возвращает ссылки на ресурсы.
//
// Запрашивает offset=0&limit=limit и идёт по ссылкам next,
// пока они есть. limit <= 0 — размер страницы по умолчанию PokeAPI.
func (c *Client) List(ctx context.Context, resource string, limit int) ([]domain.NamedResource, error) {
	next := c.baseURL + "/" + resource
	if limit > 0 {
		q := url.Values{}
		q.Set("offset", "0")
		q.Set("limit", strconv.Itoa(limit))
		next += "?" + q.Encode()
	}

	var refs []domain.NamedResource
	for next != "" {
		var page listPage
		if err := c.GetJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("list %s: %w", resource, err)
		}

		refs = append(refs, page.Results...)

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	return refs, nil
}

// Fetch загружает ресурс по URL и разбирает его в T.
func Fetch[T any](ctx context.Context, c *Client, resourceURL string) (T, error) {
	var result T
	if err := c.GetJSON(ctx, resourceURL, &result); err != nil {
		return result, err
	}
	return result, nil
}

// GetJSON выполняет GET и разбирает JSON-ответ в v.
func (c *Client) GetJSON(ctx context.Context, resourceURL string, v any) error {
	body, err := c.Get(ctx, resourceURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrRequest, resourceURL, err)
	}
	return nil
}

// Get возвращает тело ответа: из кэша или из API с retry.
func (c *Client) Get(ctx context.Context, resourceURL string) ([]byte, error) {
	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, resourceURL)
		if err != nil {
			c.logger.Warn("pokeapi cache get failed", "url", resourceURL, "error", err)
		}
		if ok {
			telemetry.APICacheHits.Inc()
			return body, nil
		}
	}

	body, err := c.getWithRetry(ctx, resourceURL)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, resourceURL, body); err != nil {
			c.logger.Warn("pokeapi cache set failed", "url", resourceURL, "error", err)
		}
	}

	return body, nil
}

// getWithRetry повторяет запрос при временных ошибках.
func (c *Client) getWithRetry(ctx context.Context, resourceURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.do(ctx, resourceURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == c.maxAttempts {
			break
		}

		delay := c.backoff(attempt)
		c.logger.Debug("retrying pokeapi request",
			"url", resourceURL,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// do выполняет один запрос.
func (c *Client) do(ctx context.Context, resourceURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.APIRequests.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	telemetry.APIRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrRequest, err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        resourceURL,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	return body, nil
}

// shouldRetry: сетевые ошибки, 429 и 5xx — да; остальные ответы и отмена — нет.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	return true
}

// backoff вычисляет задержку перед следующей попыткой:
// initialDelay * 2^(attempt-1), но не больше maxDelay.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.initialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	return min(delay, c.maxDelay)
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
