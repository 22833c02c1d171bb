// Package store talks to the record store over its REST API. Tables are
// addressed by name; predicates are limited to the filter vocabulary the
// pipeline needs: equality, greater-or-equal, ilike, ordering and limit.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/icpulse/icnews/internal/httpx"
)

// Filter is one predicate on a column.
type Filter struct {
	Column string
	Op     string // "eq", "gte", "ilike"
	Value  string
}

func Eq(column, value string) Filter  { return Filter{Column: column, Op: "eq", Value: value} }
func Gte(column, value string) Filter { return Filter{Column: column, Op: "gte", Value: value} }
func ILike(column, value string) Filter {
	return Filter{Column: column, Op: "ilike", Value: "*" + value + "*"}
}

// Query describes one select against a table.
type Query struct {
	Columns   string // defaults to "*"
	Filters   []Filter
	OrderBy   string
	Ascending bool
	Limit     int
}

// Client is the REST record-store client.
type Client struct {
	http    *resty.Client
	baseURL string
}

// New creates a store client. The service key authenticates every request.
func New(baseURL, serviceKey string, timeout time.Duration, userAgent string) *Client {
	http := httpx.NewClient(timeout, userAgent).
		SetHeader("apikey", serviceKey).
		SetHeader("Authorization", "Bearer "+serviceKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/rest/v1/" + table
}

func applyQuery(req *resty.Request, q Query) {
	columns := q.Columns
	if columns == "" {
		columns = "*"
	}
	req.SetQueryParam("select", columns)

	for _, f := range q.Filters {
		req.SetQueryParam(f.Column, f.Op+"."+f.Value)
	}
	if q.OrderBy != "" {
		direction := "desc"
		if q.Ascending {
			direction = "asc"
		}
		req.SetQueryParam("order", q.OrderBy+"."+direction)
	}
	if q.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}
}

func restError(op, table string, resp *resty.Response) error {
	snippet := strings.TrimSpace(string(resp.Body()))
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	return fmt.Errorf("store %s %s: status %d: %s", op, table, resp.StatusCode(), snippet)
}

// Select runs a query and unmarshals the rows into dest, a pointer to a
// slice of row structs.
func (c *Client) Select(ctx context.Context, table string, q Query, dest any) error {
	req := c.http.R().SetContext(ctx)
	applyQuery(req, q)

	resp, err := req.Get(c.tableURL(table))
	if err != nil {
		return fmt.Errorf("store select %s: %w", table, err)
	}
	if resp.IsError() {
		return restError("select", table, resp)
	}

	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("store select %s: decode: %w", table, err)
	}
	return nil
}

// Count returns the exact row count matching the filters.
func (c *Client) Count(ctx context.Context, table string, filters ...Filter) (int, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "count=exact")
	applyQuery(req, Query{Columns: "id", Filters: filters, Limit: 1})

	resp, err := req.Get(c.tableURL(table))
	if err != nil {
		return 0, fmt.Errorf("store count %s: %w", table, err)
	}
	if resp.IsError() {
		return 0, restError("count", table, resp)
	}

	// Content-Range: 0-0/42
	contentRange := resp.Header().Get("Content-Range")
	idx := strings.LastIndex(contentRange, "/")
	if idx < 0 {
		return 0, fmt.Errorf("store count %s: missing Content-Range", table)
	}
	total := contentRange[idx+1:]
	if total == "*" {
		return 0, nil
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("store count %s: bad Content-Range %q", table, contentRange)
	}
	return n, nil
}

// Insert writes one row and unmarshals the returned representation
// (including the generated id) into dest, a pointer to a slice.
func (c *Client) Insert(ctx context.Context, table string, row any, dest any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(row).
		Post(c.tableURL(table))
	if err != nil {
		return fmt.Errorf("store insert %s: %w", table, err)
	}
	if resp.IsError() {
		return restError("insert", table, resp)
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Body(), dest); err != nil {
			return fmt.Errorf("store insert %s: decode: %w", table, err)
		}
	}
	return nil
}

// Update patches all rows matching the filters.
func (c *Client) Update(ctx context.Context, table string, patch any, filters ...Filter) error {
	req := c.http.R().
		SetContext(ctx).
		SetBody(patch)
	applyQuery(req, Query{Filters: filters})

	resp, err := req.Patch(c.tableURL(table))
	if err != nil {
		return fmt.Errorf("store update %s: %w", table, err)
	}
	if resp.IsError() {
		return restError("update", table, resp)
	}
	return nil
}

// Delete removes all rows matching the filters.
func (c *Client) Delete(ctx context.Context, table string, filters ...Filter) error {
	req := c.http.R().SetContext(ctx)
	applyQuery(req, Query{Filters: filters})

	resp, err := req.Delete(c.tableURL(table))
	if err != nil {
		return fmt.Errorf("store delete %s: %w", table, err)
	}
	if resp.IsError() {
		return restError("delete", table, resp)
	}
	return nil
}
