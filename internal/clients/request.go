package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/net/html/charset"
	"resty.dev/v3"

	logger "github.com/pwnholic/plotbook/internal"
)

var (
	ErrNotFound = errors.New("resource not found")
	ErrBlocked  = errors.New("request blocked by upstream")
)

type clientRequest struct {
	Client *resty.Client
}

func NewClientRequest(baseURL string, t *HTTPClientOptions) *clientRequest {
	client := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(t.RetryCount).
		SetRetryWaitTime(t.RetryWaitTime).
		SetRetryMaxWaitTime(t.RetryMaxWaitTime).
		SetTimeout(t.TimeOut).
		SetHeader("Accept", "application/json")

	if t.UserAgent != "" {
		client.SetHeader("User-Agent", t.UserAgent)
	}

	return &clientRequest{
		Client: client,
	}
}

func statusCode(resp *resty.Response) error {
	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: Too Many Requests (429)", ErrBlocked)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: Forbidden (403)", ErrBlocked)
	case code == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: Service Unavailable (503)", ErrBlocked)
	case code < 200 || code > 299:
		return fmt.Errorf("unexpected status %d", code)
	}
	return nil
}

// getJSON fetches path with {id} substituted and decodes the JSON body into
// out. The body is decoded according to the response charset.
func (c *clientRequest) getJSON(ctx context.Context, path, id string, out any) error {
	response, err := c.Client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetDoNotParseResponse(true).
		Get(path)
	if err != nil {
		logger.Error("Failed to fetch %s: %s", path, err.Error())
		return err
	}
	defer response.Body.Close()

	if err := statusCode(response); err != nil {
		if errors.Is(err, ErrBlocked) {
			logger.Warn("BLOCKED: %s", err.Error())
		}
		return err
	}

	contentType := response.Header().Get("Content-Type")
	bodyReader, err := charset.NewReader(response.Body, contentType)
	if err != nil {
		logger.Error("Failed to create charset reader: %s", err.Error())
		return err
	}

	if err := json.NewDecoder(bodyReader).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *clientRequest) Close() error {
	return c.Client.Close()
}
