package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"chizhikfront/internal/client/transport"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	Doer         Doer
	BaseURL      string
	Prefix       string
	ApplyHeaders func(*http.Request)
}

func New(doer Doer, baseURL, prefix string, applyHeaders func(*http.Request)) *Client {
	return &Client{
		Doer:         doer,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Prefix:       strings.TrimRight(prefix, "/"),
		ApplyHeaders: applyHeaders,
	}
}

func (c *Client) newReq(ctx context.Context, path string, q url.Values) (*http.Request, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is empty")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.BaseURL + c.Prefix + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.ApplyHeaders != nil {
		c.ApplyHeaders(req)
	}
	return req, nil
}

// getJSON issues a GET and classifies the outcome: decoded JSON on 2xx,
// RequestError otherwise. The retry budget for transient statuses and
// network failures is spent inside the transport below.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, limit int64, out any) error {
	req, err := c.newReq(ctx, path, q)
	if err != nil {
		return err
	}

	resp, err := c.Doer.Do(req)
	if err != nil {
		var ex *transport.ExhaustedError
		if errors.As(err, &ex) {
			return &RequestError{Kind: KindExhausted, Err: err}
		}
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			Kind:   KindHTTPStatus,
			Status: resp.StatusCode,
			Body:   excerpt(b),
		}
	}

	if int64(len(b)) > limit {
		return fmt.Errorf("response body exceeds %d bytes", limit)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return &RequestError{Kind: KindUnexpectedContentType, Body: excerpt(b), Err: err}
	}
	return nil
}

func excerpt(b []byte) string {
	return strings.TrimSpace(string(b[:min(len(b), 4096)]))
}

// AsRequestError unwraps err into a *RequestError if one is in the chain.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
