package sift

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Discovery extracts sifts from the contents of an .eml file without storing
// anything for a user.
func (c *Client) Discovery(ctx context.Context, eml string) (Envelope, error) {
	return c.execute(ctx, http.MethodPost, "/v1/discovery", nil, Params{
		"email": strings.TrimSpace(eml),
	})
}

// DeleteUser deletes the user with the given username.
func (c *Client) DeleteUser(ctx context.Context, username string) (Envelope, error) {
	return c.execute(ctx, http.MethodDelete, userPath(username), nil, nil)
}

// AddUser creates a user. locale is e.g. "en_US".
func (c *Client) AddUser(ctx context.Context, locale, username string) (Envelope, error) {
	return c.execute(ctx, http.MethodPost, "/v1/users", nil, Params{
		"locale":   locale,
		"username": username,
	})
}

// GetEmailConnections lists the email connections of a user.
func (c *Client) GetEmailConnections(ctx context.Context, username string, opts ListOptions) (Envelope, error) {
	params := pageParams(opts.Limit, opts.Offset)
	if opts.IncludeInvalid {
		params["include_invalid"] = "1"
	}

	return c.execute(ctx, http.MethodGet, userPath(username)+"/email_connections", params, nil)
}

// AddEmailConnection attaches an email account to a user.
func (c *Client) AddEmailConnection(ctx context.Context, username string, conn Connection) (Envelope, error) {
	if isNilConnection(conn) {
		return nil, configError("connection", "required and must be one of the provided connection types")
	}
	body := conn.AddBody()
	if body["account_type"] == "" {
		return nil, configError("connection", "add body has no account_type")
	}

	return c.execute(ctx, http.MethodPost, userPath(username)+"/email_connections", nil, body)
}

// DeleteEmailConnection removes an email connection from a user.
func (c *Client) DeleteEmailConnection(ctx context.Context, username, connectionID string) (Envelope, error) {
	path := fmt.Sprintf("%s/email_connections/%s", userPath(username), url.PathEscape(connectionID))
	return c.execute(ctx, http.MethodDelete, path, nil, nil)
}

// GetSifts lists the sifts of a user.
func (c *Client) GetSifts(ctx context.Context, username string, opts SiftsOptions) (Envelope, error) {
	params := pageParams(opts.Limit, opts.Offset)
	params["last_update_time"] = strconv.FormatInt(opts.LastUpdateTime, 10)
	if len(opts.Domains) > 0 {
		params["domains"] = strings.Join(opts.Domains, ",")
	}

	return c.execute(ctx, http.MethodGet, userPath(username)+"/sifts", params, nil)
}

// GetSift fetches one sift. includeEml asks for the original email as well.
func (c *Client) GetSift(ctx context.Context, username, siftID string, includeEml bool) (Envelope, error) {
	params := Params{}
	if includeEml {
		params["include_eml"] = "1"
	}

	path := fmt.Sprintf("%s/sifts/%s", userPath(username), url.PathEscape(siftID))
	return c.execute(ctx, http.MethodGet, path, params, nil)
}

// GetConnectToken requests a token for the hosted connect-email page.
func (c *Client) GetConnectToken(ctx context.Context, username string) (Envelope, error) {
	return c.execute(ctx, http.MethodPost, "/v1/connect_token", nil, Params{
		"username": username,
	})
}

// SendFeedback reports an email the service did not parse correctly.
// timezone is an IANA name such as "America/Los_Angeles".
func (c *Client) SendFeedback(ctx context.Context, eml, locale, timezone string) (Envelope, error) {
	return c.execute(ctx, http.MethodPost, "/v1/feedback", nil, Params{
		"email":    eml,
		"locale":   locale,
		"timezone": timezone,
	})
}

// GetConnectEmailURL builds the URL of the hosted connect-email page. When
// token is empty a new one is fetched with GetConnectToken; that is the only
// case in which a request is made. An empty redirectURL is left out.
func (c *Client) GetConnectEmailURL(ctx context.Context, username, redirectURL, token string) (string, error) {
	if token == "" {
		envelope, err := c.GetConnectToken(ctx, username)
		if err != nil {
			return "", err
		}
		var ct ConnectToken
		if err := envelope.DecodeResult(&ct); err != nil || ct.ConnectToken == "" {
			return "", newRequestFailure("response has no connect_token", NoResponseCode, err)
		}
		token = ct.ConnectToken
	}

	// Keys stay in this order; url.Values would sort them.
	var b strings.Builder
	b.WriteString(APIURL + "/v1/connect_email?")
	b.WriteString("api_key=" + url.QueryEscape(c.apiKey))
	b.WriteString("&username=" + url.QueryEscape(username))
	b.WriteString("&token=" + url.QueryEscape(token))
	if redirectURL != "" {
		b.WriteString("&redirect_url=" + url.QueryEscape(redirectURL))
	}
	return b.String(), nil
}

// isNilConnection reports a nil interface or a nil pointer to a provider.
func isNilConnection(conn Connection) bool {
	if conn == nil {
		return true
	}
	v := reflect.ValueOf(conn)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func userPath(username string) string {
	return "/v1/users/" + url.PathEscape(username)
}

func pageParams(limit, offset int) Params {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Params{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}
}
