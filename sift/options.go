package sift

import "time"

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	httpClient    *HTTPClient
	httpClientSet bool
	timeout       time.Duration
	userAgent     string
	clock         func() time.Time
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		timeout:   30 * time.Second,
		userAgent: "siftapi-go",
		clock:     time.Now,
	}
}

// WithHTTPClient makes the Client send requests through hc. The client must
// be bound to APIURL.
func WithHTTPClient(hc *HTTPClient) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
		o.httpClientSet = true
	}
}

// WithTimeout sets the timeout of the HTTP client created when none is
// supplied. It has no effect together with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithClock replaces the time source used for the timestamp parameter.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		if now != nil {
			o.clock = now
		}
	}
}
