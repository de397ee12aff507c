package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gatekey/internal/failure"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrorBody is the wire form of a failed request.
type ErrorBody struct {
	Error string       `json:"error"`
	Kind  failure.Kind `json:"kind,omitempty"`
}

// Client issues JSON requests against Base.
type Client struct {
	Base     string
	HTTP     *http.Client
	Fallback failure.Kind
}

// NewClient returns a client for base using hc, or http.DefaultClient.
func NewClient(base string, hc *http.Client, fallback failure.Kind) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: hc, Fallback: fallback}
}

// Post sends in as JSON and decodes the response into out when out is non-nil.
func (c *Client) Post(ctx context.Context, op, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return failure.Wrap(err, failure.InvalidInput, op, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return failure.Wrap(err, failure.InvalidInput, op, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

// Get fetches path and decodes the response into out when out is non-nil.
func (c *Client) Get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return failure.Wrap(err, failure.InvalidInput, op, "build request")
	}
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return failure.Reclassify(err, c.Fallback, op, fmt.Sprintf("%s %s", req.Method, req.URL.Path))
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return c.decodeError(resp, op)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return failure.Reclassify(err, c.Fallback, op, "decode response")
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response, op string) error {
	var body ErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" {
			body.Error = resp.Status
		}
	}
	kind := body.Kind
	if !knownKind(kind) {
		kind = kindForStatus(resp.StatusCode, c.Fallback)
	}
	return &failure.Error{Kind: kind, Op: op, Msg: body.Error, Err: errors.New(resp.Status)}
}
