package sift

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPClient issues requests against a fixed base URL. It wraps an
// *http.Client so callers can supply their own transport, timeouts or
// test doubles.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient binds client to baseURL. A nil client gets http.DefaultClient.
func NewHTTPClient(baseURL string, client *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, configError("base_url", "%q is not an absolute URL", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

// BaseURL returns the URL every request path is appended to.
func (h *HTTPClient) BaseURL() string {
	return h.baseURL
}

// Response is the part of an HTTP response the client inspects.
type Response struct {
	StatusCode   int
	ReasonPhrase string
	Body         []byte
}

// TransportError is returned by HTTPClient.Do when the request could not be
// completed or the server answered with a status of 400 or above. Response is
// nil when nothing was received.
type TransportError struct {
	Response *Response
	Err      error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Response != nil {
		return fmt.Sprintf("http status %d %s", e.Response.StatusCode, e.Response.ReasonPhrase)
	}
	return fmt.Sprintf("http transport: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Do sends one request. The path is appended to the base URL and query is
// encoded as the query string.
func (h *HTTPClient) Do(ctx context.Context, method, path string, query url.Values, body string, header http.Header) (*Response, error) {
	requestURL := h.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, strings.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	out := &Response{
		StatusCode:   resp.StatusCode,
		ReasonPhrase: reasonPhrase(resp),
		Body:         data,
	}
	if resp.StatusCode >= 400 {
		return nil, &TransportError{Response: out}
	}
	return out, nil
}

// reasonPhrase extracts the text after the status code in resp.Status,
// falling back to the standard text for the code.
func reasonPhrase(resp *http.Response) string {
	if _, phrase, ok := strings.Cut(resp.Status, " "); ok && phrase != "" {
		return phrase
	}
	return http.StatusText(resp.StatusCode)
}
