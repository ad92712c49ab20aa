package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/buildinfo"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/httputil"
	"github.com/matzehuels/corkboard/pkg/observability"
	"github.com/matzehuels/corkboard/pkg/store"
)

const httpTimeout = 10 * time.Second

// Options configures a [Client]. The zero value is usable.
type Options struct {
	// HTTPClient defaults to a client with a 10 second timeout.
	HTTPClient *http.Client
	// Headers are sent with every request (for example Authorization).
	Headers map[string]string
	// RetryDelay overrides the initial backoff of item list reads.
	RetryDelay time.Duration
}

// Client talks to a corkboard backend. It implements [store.Store].
//
// Item list reads are retried on network errors, 5xx and 429 responses.
// Position writes are sent once.
type Client struct {
	base    *url.URL
	http    *http.Client
	headers map[string]string
	retry   func(ctx context.Context, fn func() error) error
}

var _ store.Store = (*Client)(nil)

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	if err := corkerrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, corkerrors.Wrap(corkerrors.ErrCodeInvalidInput, err, "parse backend url")
	}
	c := &Client{
		base:    base,
		http:    opts.HTTPClient,
		headers: opts.Headers,
		retry:   httputil.RetryWithBackoff,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: httpTimeout}
	}
	if d := opts.RetryDelay; d > 0 {
		c.retry = func(ctx context.Context, fn func() error) error {
			return httputil.Retry(ctx, 3, d, fn)
		}
	}
	return c, nil
}

// ListItems fetches all items of boardID.
func (c *Client) ListItems(ctx context.Context, boardID string) ([]board.Item, error) {
	var out ItemsResponse
	err := c.retry(ctx, func() error {
		out = ItemsResponse{}
		return c.do(ctx, http.MethodGet, itemsPath(boardID), nil, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("list items of %s: %w", boardID, err)
	}
	return out.Items, nil
}

// UpdatePosition sends a single position write.
func (c *Client) UpdatePosition(ctx context.Context, boardID string, itemID int64, pos board.Position) error {
	path := itemPath(boardID, itemID) + "/position"
	if err := c.do(ctx, http.MethodPut, path, NewPositionRequest(pos), nil); err != nil {
		return fmt.Errorf("update item %d: %w", itemID, err)
	}
	return nil
}

// PutItems inserts or replaces items on boardID.
func (c *Client) PutItems(ctx context.Context, boardID string, items []board.Item) error {
	if err := c.do(ctx, http.MethodPut, itemsPath(boardID), PutItemsRequest{Items: items}, nil); err != nil {
		return fmt.Errorf("put items on %s: %w", boardID, err)
	}
	return nil
}

// DeleteItem removes an item from boardID.
func (c *Client) DeleteItem(ctx context.Context, boardID string, itemID int64) error {
	if err := c.do(ctx, http.MethodDelete, itemPath(boardID, itemID), nil, nil); err != nil {
		return fmt.Errorf("delete item %d: %w", itemID, err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func itemsPath(boardID string) string {
	return "/boards/" + url.PathEscape(boardID) + "/items"
}

func itemPath(boardID string, itemID int64) string {
	return itemsPath(boardID) + "/" + strconv.FormatInt(itemID, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return corkerrors.Wrap(corkerrors.ErrCodeInvalidFormat, err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	u := *c.base
	u.Path += path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, u.Host, path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &httputil.RetryableError{Err: corkerrors.Wrap(corkerrors.ErrCodeNetwork, err, "%s %s", method, path)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, u.Host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckResponse(resp); err != nil {
		return statusError(err)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return corkerrors.Wrap(corkerrors.ErrCodeInvalidFormat, err, "decode %s response", path)
	}
	return nil
}

// statusError replaces a JSON error body with its message and maps 404 to
// store.ErrNotFound.
func statusError(err error) error {
	var se *httputil.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var er ErrorResponse
	if json.Unmarshal([]byte(se.Message), &er) == nil && er.Error.Message != "" {
		se.Message = er.Error.Message
	}
	if se.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", store.ErrNotFound, se.Message)
	}
	return err
}
