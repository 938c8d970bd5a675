package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// maxErrorBody caps how much of a failed response is kept in a FetchError
const maxErrorBody = 512

// HTTPLoader fetches templates and JSON data over HTTP
type HTTPLoader struct {
	client *resty.Client
	logger *zap.Logger
}

// NewHTTPLoader creates a new HTTP loader
func NewHTTPLoader(timeout time.Duration, logger *zap.Logger) *HTTPLoader {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "dago-node-render")

	return &HTTPLoader{
		client: client,
		logger: logger,
	}
}

// LoadTemplate fetches template text from url
func (l *HTTPLoader) LoadTemplate(ctx context.Context, url string) (string, error) {
	return l.get(ctx, url, "text/html, text/plain, */*")
}

// LoadData fetches a JSON object from url
func (l *HTTPLoader) LoadData(ctx context.Context, url string) (map[string]interface{}, error) {
	body, err := l.get(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("failed to decode data from %s: %w", url, err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}

// Close releases idle connections
func (l *HTTPLoader) Close() error {
	return l.client.Close()
}

func (l *HTTPLoader) get(ctx context.Context, url, accept string) (string, error) {
	start := time.Now()

	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("Accept", accept).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	body := resp.String()
	status := resp.StatusCode()

	l.logger.Debug("source fetched",
		zap.String("url", url),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if status < 200 || status > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return "", &FetchError{URL: url, StatusCode: status, Body: body}
	}

	return body, nil
}
