package sift

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type operation struct {
	name   string
	call   func(ctx context.Context, c *Client) (Envelope, error)
	method string
	path   string
	query  map[string]string
	body   map[string]string
}

func operations() []operation {
	return []operation{
		{
			name: "Discovery",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.Discovery(ctx, "  test eml file\n")
			},
			method: http.MethodPost,
			path:   "/v1/discovery",
			body:   map[string]string{"email": "test eml file"},
		},
		{
			name: "DeleteUser",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.DeleteUser(ctx, "testuser")
			},
			method: http.MethodDelete,
			path:   "/v1/users/testuser",
		},
		{
			name: "AddUser",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.AddUser(ctx, "en_US", "testuser")
			},
			method: http.MethodPost,
			path:   "/v1/users",
			body:   map[string]string{"locale": "en_US", "username": "testuser"},
		},
		{
			name: "GetEmailConnections",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.GetEmailConnections(ctx, "testuser", ListOptions{})
			},
			method: http.MethodGet,
			path:   "/v1/users/testuser/email_connections",
			query:  map[string]string{"limit": "100", "offset": "0"},
		},
		{
			name: "AddEmailConnection",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.AddEmailConnection(ctx, "testuser", NewGoogleConnection("test@email.com", "rt"))
			},
			method: http.MethodPost,
			path:   "/v1/users/testuser/email_connections",
			body: map[string]string{
				"account_type":  "google",
				"account":       "test@email.com",
				"refresh_token": "rt",
			},
		},
		{
			name: "DeleteEmailConnection",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.DeleteEmailConnection(ctx, "testuser", "42")
			},
			method: http.MethodDelete,
			path:   "/v1/users/testuser/email_connections/42",
		},
		{
			name: "GetSifts",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.GetSifts(ctx, "testuser", SiftsOptions{})
			},
			method: http.MethodGet,
			path:   "/v1/users/testuser/sifts",
			query:  map[string]string{"limit": "100", "offset": "0", "last_update_time": "0"},
		},
		{
			name: "GetSift",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.GetSift(ctx, "testuser", "99", false)
			},
			method: http.MethodGet,
			path:   "/v1/users/testuser/sifts/99",
		},
		{
			name: "GetConnectToken",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.GetConnectToken(ctx, "testuser")
			},
			method: http.MethodPost,
			path:   "/v1/connect_token",
			body:   map[string]string{"username": "testuser"},
		},
		{
			name: "SendFeedback",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.SendFeedback(ctx, "raw eml", "en_US", "America/Los_Angeles")
			},
			method: http.MethodPost,
			path:   "/v1/feedback",
			body: map[string]string{
				"email":    "raw eml",
				"locale":   "en_US",
				"timezone": "America/Los_Angeles",
			},
		},
	}
}

func TestOperationsShapeRequests(t *testing.T) {
	for _, op := range operations() {
		t.Run(op.name, func(t *testing.T) {
			var rec recordedRequest
			client := newTestClient(t, recording(&rec, respond(200, `{"code": 200, "message": "Success", "result": {}}`)))

			_, err := op.call(context.Background(), client)
			require.NoError(t, err)

			assert.Equal(t, op.method, rec.Method)
			assert.Equal(t, op.path, rec.Path)

			for k, v := range op.query {
				assert.Equal(t, v, rec.Query.Get(k), "query %s", k)
			}
			// api_key, timestamp, signature plus the operation's own params
			assert.Len(t, rec.Query, len(op.query)+3)

			assert.Len(t, rec.Body, len(op.body))
			for k, v := range op.body {
				assert.Equal(t, v, rec.Body.Get(k), "body %s", k)
			}

			signed := Params{"api_key": testKey, "timestamp": "1700000000"}
			for k, v := range op.query {
				signed[k] = v
			}
			for k, v := range op.body {
				signed[k] = v
			}
			assert.Equal(t, GenerateSignature(testSecret, op.method, op.path, signed), rec.Query.Get("signature"))
		})
	}
}

func TestOperationsFailures(t *testing.T) {
	scenarios := []struct {
		name     string
		rt       roundTripFunc
		wantCode int
	}{
		{name: "request returns 400", rt: respond(400, ""), wantCode: 400},
		{
			name: "request exception occurs",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("Error Communicating with Server")
			},
			wantCode: NoResponseCode,
		},
		{name: "body code is not 200", rt: respond(200, `{"code": 400, "message": "Bad Request"}`), wantCode: 400},
	}

	for _, op := range operations() {
		for _, sc := range scenarios {
			t.Run(op.name+"/"+sc.name, func(t *testing.T) {
				client := newTestClient(t, sc.rt)

				_, err := op.call(context.Background(), client)
				require.Error(t, err)

				code, ok := FailureCode(err)
				require.True(t, ok)
				assert.Equal(t, sc.wantCode, code)
			})
		}
	}
}

func TestOperationsReturnDecodedBody(t *testing.T) {
	body := `{"code": 200, "message": "Success", "result": {}}`
	for _, op := range operations() {
		t.Run(op.name, func(t *testing.T) {
			client := newTestClient(t, respond(200, body))

			envelope, err := op.call(context.Background(), client)
			require.NoError(t, err)
			assert.Equal(t, Envelope{"code": json.Number("200"), "message": "Success", "result": map[string]any{}}, envelope)
		})
	}
}

func TestGetEmailConnectionsIncludeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		opts    ListOptions
		present bool
	}{
		{name: "omitted when false", opts: ListOptions{}, present: false},
		{name: "set when true", opts: ListOptions{IncludeInvalid: true}, present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recordedRequest
			client := newTestClient(t, recording(&rec, respond(200, `{"code": 200, "message": "Success"}`)))

			_, err := client.GetEmailConnections(context.Background(), "testuser", tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.present, rec.Query.Has("include_invalid"))
			if tt.present {
				assert.Equal(t, "1", rec.Query.Get("include_invalid"))
			}
		})
	}
}

func TestGetEmailConnectionsPaging(t *testing.T) {
	var rec recordedRequest
	client := newTestClient(t, recording(&rec, respond(200, `{"code": 200, "message": "Success"}`)))

	_, err := client.GetEmailConnections(context.Background(), "testuser", ListOptions{Limit: 25, Offset: 50})
	require.NoError(t, err)
	assert.Equal(t, "25", rec.Query.Get("limit"))
	assert.Equal(t, "50", rec.Query.Get("offset"))
}

func TestGetSiftsQuery(t *testing.T) {
	tests := []struct {
		name        string
		opts        SiftsOptions
		wantDomains string
		hasDomains  bool
	}{
		{name: "no domains", opts: SiftsOptions{}},
		{name: "single domain", opts: SiftsOptions{Domains: []string{"flight"}}, wantDomains: "flight", hasDomains: true},
		{
			name:        "domains joined by comma",
			opts:        SiftsOptions{Domains: []string{"flight", "hotel", "rentalcar"}, LastUpdateTime: 1500000000, Limit: 10, Offset: 20},
			wantDomains: "flight,hotel,rentalcar",
			hasDomains:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recordedRequest
			client := newTestClient(t, recording(&rec, respond(200, `{"code": 200, "message": "Success"}`)))

			_, err := client.GetSifts(context.Background(), "testuser", tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.hasDomains, rec.Query.Has("domains"))
			assert.Equal(t, tt.wantDomains, rec.Query.Get("domains"))
			if tt.opts.LastUpdateTime > 0 {
				assert.Equal(t, "1500000000", rec.Query.Get("last_update_time"))
				assert.Equal(t, "10", rec.Query.Get("limit"))
				assert.Equal(t, "20", rec.Query.Get("offset"))
			}
		})
	}
}

func TestGetSiftIncludeEml(t *testing.T) {
	for _, include := range []bool{false, true} {
		var rec recordedRequest
		client := newTestClient(t, recording(&rec, respond(200, `{"code": 200, "message": "Success"}`)))

		_, err := client.GetSift(context.Background(), "testuser", "99", include)
		require.NoError(t, err)
		assert.Equal(t, include, rec.Query.Has("include_eml"))
	}
}

func TestPathSegmentsEscaped(t *testing.T) {
	tests := []struct {
		name     string
		call     func(context.Context, *Client) (Envelope, error)
		method   string
		wirePath string
		rawPath  string
	}{
		{
			name:     "username with space and slash",
			call:     func(ctx context.Context, c *Client) (Envelope, error) { return c.DeleteUser(ctx, "john doe/x") },
			method:   http.MethodDelete,
			wirePath: "/v1/users/john%20doe%2Fx",
			rawPath:  "/v1/users/john doe/x",
		},
		{
			name:     "non-ASCII username",
			call:     func(ctx context.Context, c *Client) (Envelope, error) { return c.DeleteUser(ctx, "jöhn doe") },
			method:   http.MethodDelete,
			wirePath: "/v1/users/j%C3%B6hn%20doe",
			rawPath:  "/v1/users/jöhn doe",
		},
		{
			name: "sift id",
			call: func(ctx context.Context, c *Client) (Envelope, error) {
				return c.GetSift(ctx, "jöhn", "a b", false)
			},
			method:   http.MethodGet,
			wirePath: "/v1/users/j%C3%B6hn/sifts/a%20b",
			rawPath:  "/v1/users/jöhn/sifts/a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recordedRequest
			client := newTestClient(t, recording(&rec, respond(200, `{"code": 200, "message": "Success"}`)))

			_, err := tt.call(context.Background(), client)
			require.NoError(t, err)

			assert.Equal(t, tt.wirePath, rec.Path)
			signed := Params{"api_key": testKey, "timestamp": "1700000000"}
			assert.Equal(t, GenerateSignature(testSecret, tt.method, tt.rawPath, signed), rec.Query.Get("signature"))
		})
	}
}

func TestAddEmailConnectionNil(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
	}{
		{name: "nil interface", conn: nil},
		{name: "nil exchange pointer", conn: (*ExchangeConnection)(nil)},
		{name: "nil imap pointer", conn: (*ImapConnection)(nil)},
		{name: "nil google pointer", conn: (*GoogleConnection)(nil)},
		{name: "nil microsoft pointer", conn: (*MicrosoftConnection)(nil)},
		{name: "nil yahoo pointer", conn: (*YahooConnection)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
				called = true
				return respond(200, `{"code": 200}`)(r)
			})

			var err error
			require.NotPanics(t, func() {
				_, err = client.AddEmailConnection(context.Background(), "testuser", tt.conn)
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.False(t, called)
		})
	}
}

func TestAddEmailConnectionPointer(t *testing.T) {
	var rec recordedRequest
	client := newTestClient(t, recording(&rec, respond(200, `{"code": 200, "message": "Success"}`)))

	conn := NewGoogleConnection("a@example.com", "rt")
	_, err := client.AddEmailConnection(context.Background(), "testuser", &conn)
	require.NoError(t, err)
	assert.Equal(t, "google", rec.Body.Get("account_type"))
}

func TestGetConnectEmailURL(t *testing.T) {
	t.Run("with token", func(t *testing.T) {
		client := newTestClient(t, func(*http.Request) (*http.Response, error) {
			t.Fatal("no request expected when a token is given")
			return nil, nil
		})

		got, err := client.GetConnectEmailURL(context.Background(), "test user", "", "tok")
		require.NoError(t, err)
		assert.Equal(t, "https://api.easilydo.com/v1/connect_email?api_key=abc123&username=test+user&token=tok", got)
	})

	t.Run("with redirect URL", func(t *testing.T) {
		client := newTestClient(t, respond(500, ""))

		got, err := client.GetConnectEmailURL(context.Background(), "testuser", "https://example.com/done?x=1", "tok")
		require.NoError(t, err)
		assert.Equal(t,
			"https://api.easilydo.com/v1/connect_email?api_key=abc123&username=testuser&token=tok&redirect_url="+url.QueryEscape("https://example.com/done?x=1"),
			got)
	})

	t.Run("fetches token", func(t *testing.T) {
		var rec recordedRequest
		client := newTestClient(t, recording(&rec, respond(200, `{"code": 200, "message": "Success", "result": {"connect_token": "fresh"}}`)))

		got, err := client.GetConnectEmailURL(context.Background(), "testuser", "", "")
		require.NoError(t, err)
		assert.Equal(t, "/v1/connect_token", rec.Path)
		assert.Equal(t, "https://api.easilydo.com/v1/connect_email?api_key=abc123&username=testuser&token=fresh", got)
	})

	t.Run("token fetch fails", func(t *testing.T) {
		client := newTestClient(t, respond(200, `{"code": 401, "message": "Unauthorized"}`))

		_, err := client.GetConnectEmailURL(context.Background(), "testuser", "", "")
		require.Error(t, err)

		var rf *RequestFailure
		require.ErrorAs(t, err, &rf)
		assert.Equal(t, 401, rf.Code)
		assert.True(t, rf.IsUnauthorized())
	})

	t.Run("token missing from result", func(t *testing.T) {
		client := newTestClient(t, respond(200, `{"code": 200, "message": "Success", "result": {}}`))

		_, err := client.GetConnectEmailURL(context.Background(), "testuser", "", "")
		require.Error(t, err)
		code, ok := FailureCode(err)
		require.True(t, ok)
		assert.Equal(t, NoResponseCode, code)
	})
}
