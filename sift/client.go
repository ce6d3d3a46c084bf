package sift

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIURL is the only base URL the Sift API is served from.
const APIURL = "https://api.easilydo.com"

// Client is a Sift API client. It signs every request with the API secret
// and turns failures into *RequestFailure values.
type Client struct {
	apiKey     string
	apiSecret  string
	httpClient *HTTPClient
	userAgent  string
	now        func() time.Time
}

// New creates a new Sift client for the given credentials.
func New(apiKey, apiSecret string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, configError("api_key", "required and cannot be empty")
	}
	if apiSecret == "" {
		return nil, configError("api_secret", "required and cannot be empty")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	httpClient := options.httpClient
	if options.httpClientSet {
		if httpClient == nil || httpClient.client == nil {
			return nil, configError("http_client", "must be created with NewHTTPClient")
		}
		if httpClient.BaseURL() != APIURL {
			return nil, configError("http_client", "base URL must be %s, got %s", APIURL, httpClient.BaseURL())
		}
	} else {
		var err error
		httpClient, err = NewHTTPClient(APIURL, &http.Client{Timeout: options.timeout})
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: httpClient,
		userAgent:  options.userAgent,
		now:        options.clock,
	}, nil
}

// APIKey returns the key sent with every request.
func (c *Client) APIKey() string {
	return c.apiKey
}

// defaultParams returns the parameters attached to every request.
func (c *Client) defaultParams() Params {
	return Params{
		"api_key":   c.apiKey,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
}

// execute signs and sends one request and returns the decoded envelope.
//
// The signature covers query, defaults and body together. Only query and
// defaults (plus the signature) go into the query string. path is sent
// escaped but signed unescaped.
func (c *Client) execute(ctx context.Context, method, path string, query, body Params) (Envelope, error) {
	signedPath, err := url.PathUnescape(path)
	if err != nil {
		return nil, configError("path", "invalid escaping in %q", path)
	}

	outgoing := query.merge(c.defaultParams())
	outgoing["signature"] = GenerateSignature(c.apiSecret, method, signedPath, outgoing.merge(body))

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("Accept", "application/json")
	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(ctx, method, path, outgoing.Values(), body.Encode(), header)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && te.Response != nil {
			return nil, newRequestFailure(te.Response.ReasonPhrase, te.Response.StatusCode, err)
		}
		return nil, newRequestFailure(DefaultFailureMessage, NoResponseCode, err)
	}

	envelope, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, newRequestFailure("invalid response body", NoResponseCode, err)
	}
	if envelope == nil {
		return nil, newRequestFailure("invalid response body", NoResponseCode, errors.New("response body is not a JSON object"))
	}
	if envelope.Code() != 200 {
		return nil, newRequestFailure(envelope.Message(), envelope.Code(), nil)
	}

	return envelope, nil
}
