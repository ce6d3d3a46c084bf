// Package sift provides a client for the Sift email-analysis API.
//
// Sift extracts structured records ("sifts") such as flight, hotel or
// shipment details from emails. This package signs and sends requests to the
// API and reports failures as typed errors.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: signs and executes requests, one method per endpoint
//   - GenerateSignature: the HMAC-SHA1 request signature
//   - HTTPClient: the transport, bound to the fixed API base URL
//   - Connection: value objects describing an email account to attach
//   - Errors: ConfigurationError and RequestFailure
//
// # Usage
//
//	client, err := sift.New("your-api-key", "your-api-secret")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	envelope, err := client.Discovery(ctx, emlContents)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var sifts []sift.Sift
//	if err := envelope.DecodeResult(&sifts); err != nil {
//		log.Fatal(err)
//	}
//
// # Signing
//
// Every request carries api_key, timestamp and signature query parameters.
// The signature covers the query parameters and the form body together:
//
//	HMAC-SHA1(secret, "METHOD&/path&k1=v1&k2=v2...")
//
// with keys sorted ascending. The secret itself is never sent.
//
// # Error Handling
//
// The package defines two error types:
//
//   - ConfigurationError: invalid input from the caller (missing credentials,
//     an HTTP client bound to the wrong base URL, a nil connection)
//   - RequestFailure: the request failed; Code holds the HTTP status, the
//     code reported in the response body, or NoResponseCode (-1) when nothing
//     was received
//
// A response with HTTP status 200 whose body reports a code other than 200 is
// a failure.
//
//	var rf *sift.RequestFailure
//	if errors.As(err, &rf) && rf.IsUnauthorized() {
//		// Handle bad credentials
//	}
//
// The client never retries and never logs.
package sift
