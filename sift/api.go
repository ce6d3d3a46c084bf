package sift

import (
	"context"
)

// API defines the interface for Sift operations
type API interface {
	// Discovery extracts sifts from a raw email
	Discovery(ctx context.Context, eml string) (Envelope, error)

	// User management
	AddUser(ctx context.Context, locale, username string) (Envelope, error)
	DeleteUser(ctx context.Context, username string) (Envelope, error)

	// Email connections
	GetEmailConnections(ctx context.Context, username string, opts ListOptions) (Envelope, error)
	AddEmailConnection(ctx context.Context, username string, conn Connection) (Envelope, error)
	DeleteEmailConnection(ctx context.Context, username, connectionID string) (Envelope, error)

	// Sifts
	GetSifts(ctx context.Context, username string, opts SiftsOptions) (Envelope, error)
	GetSift(ctx context.Context, username, siftID string, includeEml bool) (Envelope, error)

	// Connect email flow
	GetConnectToken(ctx context.Context, username string) (Envelope, error)
	GetConnectEmailURL(ctx context.Context, username, redirectURL, token string) (string, error)

	// SendFeedback reports a badly parsed email
	SendFeedback(ctx context.Context, eml, locale, timezone string) (Envelope, error)
}

var _ API = (*Client)(nil)
