package sift

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// GenerateSignature computes the request signature expected by the Sift API.
//
// The signed string is "METHOD&PATH" followed by the canonical parameter
// string. The digest is HMAC-SHA1 keyed by the API secret, hex encoded in
// lowercase. SHA-1 is what the service verifies against and must not change.
func GenerateSignature(secret, method, path string, params Params) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(method + "&" + path + CanonicalParams(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// CanonicalParams renders params as "&k1=v1&k2=v2" with keys in ascending
// byte order. Values are not escaped. An empty set renders as "".
func CanonicalParams(params Params) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteByte('&')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
