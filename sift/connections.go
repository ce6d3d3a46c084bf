package sift

import "strings"

// Account types understood by the add-connection endpoint.
const (
	AccountTypeExchange  = "exchange"
	AccountTypeImap      = "imap"
	AccountTypeGoogle    = "google"
	AccountTypeMicrosoft = "live"
	AccountTypeYahoo     = "yahoo"
)

// Connection describes how the service authenticates to one email account.
// The set of implementations is closed; use the New*Connection constructors.
type Connection interface {
	// AccountType returns the account_type sent to the service.
	AccountType() string
	// AddBody returns the request body for AddEmailConnection.
	AddBody() Params

	connection()
}

// ExchangeConnection connects a Microsoft Exchange account.
type ExchangeConnection struct {
	email    string
	password string
	account  string
	host     string
}

// NewExchangeConnection creates an Exchange connection. account and host are
// optional and left out of the body when empty.
func NewExchangeConnection(email, password, account, host string) ExchangeConnection {
	return ExchangeConnection{email: email, password: password, account: account, host: host}
}

func (ExchangeConnection) connection() {}

// AccountType implements Connection.
func (ExchangeConnection) AccountType() string { return AccountTypeExchange }

// AddBody implements Connection.
func (c ExchangeConnection) AddBody() Params {
	body := Params{
		"account_type": AccountTypeExchange,
		"email":        c.email,
		"password":     c.password,
	}
	if c.host != "" {
		body["host"] = c.host
	}
	if c.account != "" {
		body["account"] = c.account
	}
	return body
}

// ImapConnection connects a generic IMAP account.
type ImapConnection struct {
	email    string
	password string
	host     string
}

// NewImapConnection creates an IMAP connection.
func NewImapConnection(email, password, host string) ImapConnection {
	return ImapConnection{email: email, password: password, host: host}
}

func (ImapConnection) connection() {}

// AccountType implements Connection.
func (ImapConnection) AccountType() string { return AccountTypeImap }

// AddBody implements Connection.
func (c ImapConnection) AddBody() Params {
	return Params{
		"account_type": AccountTypeImap,
		"account":      c.email,
		"password":     c.password,
		"host":         c.host,
	}
}

// GoogleConnection connects a Gmail account with an OAuth2 refresh token.
type GoogleConnection struct {
	email        string
	refreshToken string
}

// NewGoogleConnection creates a Google connection.
func NewGoogleConnection(email, refreshToken string) GoogleConnection {
	return GoogleConnection{email: email, refreshToken: refreshToken}
}

func (GoogleConnection) connection() {}

// AccountType implements Connection.
func (GoogleConnection) AccountType() string { return AccountTypeGoogle }

// AddBody implements Connection.
func (c GoogleConnection) AddBody() Params {
	return Params{
		"account_type":  AccountTypeGoogle,
		"account":       c.email,
		"refresh_token": c.refreshToken,
	}
}

// MicrosoftConnection connects an Outlook.com ("live") account.
type MicrosoftConnection struct {
	email        string
	refreshToken string
	redirectURI  string
}

// NewMicrosoftConnection creates a Microsoft connection. redirectURI must be
// the one used when the refresh token was issued.
func NewMicrosoftConnection(email, refreshToken, redirectURI string) MicrosoftConnection {
	return MicrosoftConnection{email: email, refreshToken: refreshToken, redirectURI: redirectURI}
}

func (MicrosoftConnection) connection() {}

// AccountType implements Connection.
func (MicrosoftConnection) AccountType() string { return AccountTypeMicrosoft }

// AddBody implements Connection.
func (c MicrosoftConnection) AddBody() Params {
	return Params{
		"account_type":  AccountTypeMicrosoft,
		"account":       c.email,
		"refresh_token": c.refreshToken,
		"redirect_uri":  c.redirectURI,
	}
}

// YahooConnection connects a Yahoo account. account is the Yahoo GUID of the user.
type YahooConnection struct {
	account      string
	refreshToken string
	redirectURI  string
}

// NewYahooConnection creates a Yahoo connection.
func NewYahooConnection(account, refreshToken, redirectURI string) YahooConnection {
	return YahooConnection{account: account, refreshToken: refreshToken, redirectURI: redirectURI}
}

func (YahooConnection) connection() {}

// AccountType implements Connection.
func (YahooConnection) AccountType() string { return AccountTypeYahoo }

// AddBody implements Connection.
func (c YahooConnection) AddBody() Params {
	return Params{
		"account_type":  AccountTypeYahoo,
		"account":       c.account,
		"refresh_token": c.refreshToken,
		"redirect_uri":  c.redirectURI,
	}
}

// ConnectionFields carries the union of all provider fields, for callers that
// pick the provider at runtime.
type ConnectionFields struct {
	Email        string
	Password     string
	Account      string
	Host         string
	RefreshToken string
	RedirectURI  string
}

// NewConnection builds the connection for accountType from fields. Required
// fields of the chosen provider must be set.
func NewConnection(accountType string, f ConnectionFields) (Connection, error) {
	require := func(pairs ...string) error {
		for i := 0; i < len(pairs); i += 2 {
			if pairs[i+1] == "" {
				return configError(pairs[i], "required for %s connections", accountType)
			}
		}
		return nil
	}

	switch strings.ToLower(accountType) {
	case AccountTypeExchange:
		if err := require("email", f.Email, "password", f.Password); err != nil {
			return nil, err
		}
		return NewExchangeConnection(f.Email, f.Password, f.Account, f.Host), nil
	case AccountTypeImap:
		if err := require("email", f.Email, "password", f.Password, "host", f.Host); err != nil {
			return nil, err
		}
		return NewImapConnection(f.Email, f.Password, f.Host), nil
	case AccountTypeGoogle:
		if err := require("email", f.Email, "refresh_token", f.RefreshToken); err != nil {
			return nil, err
		}
		return NewGoogleConnection(f.Email, f.RefreshToken), nil
	case AccountTypeMicrosoft, "microsoft", "outlook":
		if err := require("email", f.Email, "refresh_token", f.RefreshToken, "redirect_uri", f.RedirectURI); err != nil {
			return nil, err
		}
		return NewMicrosoftConnection(f.Email, f.RefreshToken, f.RedirectURI), nil
	case AccountTypeYahoo:
		if err := require("account", f.Account, "refresh_token", f.RefreshToken, "redirect_uri", f.RedirectURI); err != nil {
			return nil, err
		}
		return NewYahooConnection(f.Account, f.RefreshToken, f.RedirectURI), nil
	default:
		return nil, configError("account_type", "unknown account type %q", accountType)
	}
}
