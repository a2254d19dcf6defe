// Package webclient — HTTP клиент для инструментов, которые ходят в интернет
// (новости, погода).
//
// Даёт инструментам одно и то же поведение:
//   - rate limiting на хост (golang.org/x/time/rate)
//   - retry при сетевых ошибках и 429/5xx
//   - классификация ошибок (ErrorType) для логов
//
// Инструменты в pkg/tools/std остаются тонкими обёртками: они строят URL,
// разбирают ответ и маскируют любую ошибку фиксированным текстом.
package webclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"golang.org/x/time/rate"
)

// ErrorType представляет тип ошибки при обращении к внешнему сервису.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrAuthFailed
	ErrTimeout
	ErrNetwork
	ErrRateLimit
	ErrHTTPStatus
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrAuthFailed:
		return "authentication_failed"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	case ErrHTTPStatus:
		return "http_status"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (e ErrorType) HumanMessage() string {
	switch e {
	case ErrAuthFailed:
		return "Сервис отклонил запрос: нет доступа."
	case ErrTimeout:
		return "Превышено время ожидания. Сервис не отвечает или проблемы с сетью."
	case ErrNetwork:
		return "Сервис недоступен. Проверьте подключение к интернету."
	case ErrRateLimit:
		return "Превышен лимит запросов. Подождите перед следующей попыткой."
	case ErrHTTPStatus:
		return "Сервис вернул неожиданный HTTP статус."
	default:
		return "Неизвестная ошибка при обращении к сервису."
	}
}

// StatusError — ответ с не-2xx статусом.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d, body: %s", e.StatusCode, e.Body)
}

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах (Rule 9).
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — общий клиент инструментов.
type Client struct {
	httpClient    HTTPClient
	retryAttempts int
	rateLimit     int // запросов в минуту на хост
	burst         int
	userAgent     string
	retryDelay    time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // host → limiter
}

// New создает клиент из конфигурации.
//
// Поля с нулевыми значениями используют дефолты через GetDefaults().
func New(cfg config.HTTPConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid http.timeout format: %w", err)
	}

	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		retryAttempts: cfg.RetryAttempts,
		rateLimit:     cfg.RateLimit,
		burst:         cfg.BurstLimit,
		userAgent:     cfg.UserAgent,
		retryDelay:    time.Second,
		limiters:      make(map[string]*rate.Limiter),
	}, nil
}

// WithHTTPClient подменяет транспорт (тесты, прокси).
func (c *Client) WithHTTPClient(hc HTTPClient) *Client {
	c.httpClient = hc
	return c
}

// WithRetryDelay задаёт паузу перед повтором после 429/5xx без Retry-After.
func (c *Client) WithRetryDelay(d time.Duration) *Client {
	c.retryDelay = d
	return c
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuthFailed
		case http.StatusTooManyRequests:
			return ErrRateLimit
		default:
			return ErrHTTPStatus
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "timeout"), strings.Contains(errMsg, "deadline exceeded"):
		return ErrTimeout
	case strings.Contains(errMsg, "connection refused"), strings.Contains(errMsg, "no such host"):
		return ErrNetwork
	}
	return ErrUnknown
}

// GetBytes выполняет GET и возвращает тело ответа.
//
// params могут быть nil. Повторяет запрос при сетевых ошибках, 429 и 5xx.
func (c *Client) GetBytes(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if params != nil {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	limiter := c.getOrCreateLimiter(u.Host)

	var lastErr error
	for i := 0; i < c.retryAttempts; i++ {
		// Ждем разрешения от лимитера (блокирует горутину, если превысили лимит)
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		body, retryAfter, err := c.do(ctx, u.String())
		if err == nil {
			return body, nil
		}
		lastErr = err
		if retryAfter < 0 {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryAfter):
		}
	}

	return nil, fmt.Errorf("max retries exceeded, last error: %w", lastErr)
}

// GetJSON выполняет GET и разбирает JSON ответ в dest.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, dest any) error {
	body, err := c.GetBytes(ctx, rawURL, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}
	return nil
}

// do выполняет один запрос.
//
// retryAfter < 0 означает что повтор бессмысленен.
func (c *Client) do(ctx context.Context, target string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, -1, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, -1, err
		}
		return nil, c.retryDelay, err // Сетевая ошибка, пробуем еще
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.retryDelay, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := c.retryDelay
		if s := resp.Header.Get("Retry-After"); s != "" {
			if sec, err := strconv.Atoi(s); err == nil {
				retryAfter = time.Duration(sec) * time.Second
			}
		}
		return nil, retryAfter, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	case resp.StatusCode >= 500:
		return nil, c.retryDelay, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	default:
		return nil, -1, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}
}

// getOrCreateLimiter возвращает limiter для хоста или создаёт новый.
func (c *Client) getOrCreateLimiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limiter, exists := c.limiters[host]; exists {
		return limiter
	}

	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(c.rateLimit) / 60.0
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), c.burst)
	c.limiters[host] = limiter
	return limiter
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
