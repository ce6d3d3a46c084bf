package sift

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"
)

// Params is a flat set of request parameters. Keys are unique and values are
// sent exactly as given.
type Params map[string]string

// merge returns a new Params holding p overlaid with other. Keys in other win.
func (p Params) merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Values converts p to url.Values for encoding.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for k, val := range p {
		v.Set(k, val)
	}
	return v
}

// Encode returns p in application/x-www-form-urlencoded form.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	return p.Values().Encode()
}

// Envelope is the decoded JSON object returned by every Sift endpoint.
// It carries at least "code" and "message" and usually a "result".
type Envelope map[string]any

// decodeEnvelope parses a response body. Numbers stay json.Number so large
// ids survive; a JSON null gives a nil Envelope.
func decodeEnvelope(data []byte) (Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var envelope Envelope
	if err := dec.Decode(&envelope); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return envelope, nil
}

// Code returns the envelope status code, or 0 when absent or not a number.
func (e Envelope) Code() int {
	switch v := e["code"].(type) {
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}

// Message returns the envelope message.
func (e Envelope) Message() string {
	if s, ok := e["message"].(string); ok {
		return s
	}
	return ""
}

// Result returns the raw "result" value, or nil when absent.
func (e Envelope) Result() any {
	return e["result"]
}

// DecodeResult decodes the "result" value into v.
func (e Envelope) DecodeResult(v any) error {
	raw, ok := e["result"]
	if !ok {
		return fmt.Errorf("envelope has no result")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to re-encode result: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// Sift is a structured record the service extracted from an email.
type Sift struct {
	SiftID    int64          `json:"sift_id"`
	EmailID   int64          `json:"email_id"`
	AccountID int64          `json:"account_id"`
	MimeID    string         `json:"mime_id,omitempty"`
	Domain    string         `json:"domain"`
	EmailTime int64          `json:"email_time"`
	Payload   map[string]any `json:"payload,omitempty"`
	Eml       string         `json:"eml,omitempty"`
}

// Time returns the time of the originating email.
func (s *Sift) Time() time.Time {
	if s.EmailTime > 0 {
		return time.Unix(s.EmailTime, 0)
	}
	return time.Time{}
}

// Type returns the schema.org type of the payload, e.g. "FlightReservation".
func (s *Sift) Type() string {
	if t, ok := s.Payload["@type"].(string); ok {
		return t
	}
	return ""
}

// EmailConnection is an email account attached to a Sift user.
type EmailConnection struct {
	ID          int64  `json:"id"`
	AccountType string `json:"account_type"`
	Account     string `json:"account"`
	Invalid     bool   `json:"invalid,omitempty"`
}

// ConnectToken is the result of GetConnectToken.
type ConnectToken struct {
	ConnectToken string `json:"connect_token"`
}

// ListOptions controls paging of GetEmailConnections.
type ListOptions struct {
	Limit          int
	Offset         int
	IncludeInvalid bool
}

// SiftsOptions controls paging and filtering of GetSifts.
type SiftsOptions struct {
	Limit          int
	Offset         int
	LastUpdateTime int64
	Domains        []string
}

// DefaultLimit is the page size used when an options Limit is zero.
const DefaultLimit = 100
