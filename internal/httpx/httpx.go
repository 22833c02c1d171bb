// Package httpx builds the outbound HTTP clients shared by the pipeline.
package httpx

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewClient returns a resty client with a fixed timeout and user agent.
// Redirects are followed; retries are deliberately not configured, the
// pipeline treats every fetch failure as zero results.
func NewClient(timeout time.Duration, userAgent string) *resty.Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	client.SetRetryCount(0)
	return client
}
