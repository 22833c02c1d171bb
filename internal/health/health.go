// Package health probes directory websites and writes the verdicts
// back to the record store.
package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/model"
)

// Store is the slice of the record store the checker needs.
type Store interface {
	ActiveWebsites(ctx context.Context) ([]model.Website, error)
	SetWebsiteStatus(ctx context.Context, id string, active bool, note string) error
}

// Probe is one availability verdict.
type Probe struct {
	Available    bool
	StatusCode   int
	ErrorMessage string
	ResponseTime time.Duration
	RedirectURL  string
}

// Summary counts one full check run.
type Summary struct {
	Checked     int
	Available   int
	Unavailable int
}

// Checker probes websites with a short timeout and relaxed TLS, since
// older directory sites often carry stale certificates.
type Checker struct {
	http  *resty.Client
	store Store
	delay time.Duration
}

// New builds a checker. delay is the pause between consecutive probes.
func New(store Store, timeout, delay time.Duration, userAgent string) *Checker {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Checker{http: client, store: store, delay: delay}
}

// CheckAll probes every active website and always writes the outcome
// back, available or not. Probe failures never abort the sweep.
func (c *Checker) CheckAll(ctx context.Context) (Summary, error) {
	websites, err := c.store.ActiveWebsites(ctx)
	if err != nil {
		return Summary{}, err
	}
	logger.Info("checking websites", "count", len(websites))

	var sum Summary
	for i, site := range websites {
		if i > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(c.delay):
			}
		}

		probe := c.Check(ctx, site.URL)
		sum.Checked++
		if probe.Available {
			sum.Available++
			logger.Info("website available", "name", site.Name, "status", probe.StatusCode)
		} else {
			sum.Unavailable++
			logger.Warn("website unavailable", "name", site.Name, "reason", probe.ErrorMessage)
		}

		if err := c.store.SetWebsiteStatus(ctx, site.ID, probe.Available, probe.ErrorMessage); err != nil {
			logger.Error("update website status failed", "id", site.ID, "error", err)
		}
	}

	logger.Info("website check done",
		"available", sum.Available, "unavailable", sum.Unavailable)
	return sum, nil
}

// Check probes one URL. A 200 with a real body is available; permanent
// and temporary redirects count as available with a note; everything
// else carries a specific error message.
func (c *Checker) Check(ctx context.Context, url string) Probe {
	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(url)
	elapsed := time.Since(start)

	if err != nil {
		msg := fmt.Sprintf("连接错误: %v", err)
		if ctx.Err() != nil || isTimeout(err) {
			msg = "请求超时"
		}
		return Probe{ErrorMessage: msg, ResponseTime: elapsed}
	}

	probe := Probe{
		StatusCode:   resp.StatusCode(),
		ResponseTime: elapsed,
	}
	if final := resp.RawResponse.Request.URL.String(); final != url {
		probe.RedirectURL = final
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		if len(resp.Body()) > 100 {
			probe.Available = true
		} else {
			probe.ErrorMessage = "页面内容过短，可能是错误页面"
		}
	case http.StatusMovedPermanently, http.StatusFound:
		probe.Available = true
		probe.ErrorMessage = fmt.Sprintf("网站重定向到: %s", probe.RedirectURL)
	case http.StatusForbidden:
		probe.ErrorMessage = "访问被拒绝 (403 Forbidden)"
	case http.StatusNotFound:
		probe.ErrorMessage = "页面不存在 (404 Not Found)"
	case http.StatusInternalServerError:
		probe.ErrorMessage = "服务器内部错误 (500 Internal Server Error)"
	default:
		probe.ErrorMessage = fmt.Sprintf("HTTP状态码: %d", resp.StatusCode())
	}
	return probe
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return false
}
