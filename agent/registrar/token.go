package registrar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const guestTokenTTL = 24 * time.Hour

var (
	ErrCredentialsMissing = errors.New("SignalWire credentials not configured")
	ErrNotConfigured      = errors.New("SWML handler not configured - check startup logs")
)

// GuestTokenAPI is satisfied by *fabric.Client.
type GuestTokenAPI interface {
	CreateGuestToken(ctx context.Context, addressIDs []string, expireAt time.Time) (string, error)
}

type GuestToken struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

// TokenIssuer mints browser guest tokens scoped to the registered address.
type TokenIssuer struct {
	api          GuestTokenAPI
	registration Reader
	now          func() time.Time
}

// NewTokenIssuer accepts a nil api when Fabric credentials are absent; Issue
// then reports ErrCredentialsMissing.
func NewTokenIssuer(api GuestTokenAPI, registration Reader) *TokenIssuer {
	return &TokenIssuer{api: api, registration: registration, now: time.Now}
}

func (t *TokenIssuer) Issue(ctx context.Context) (GuestToken, error) {
	if t.api == nil {
		return GuestToken{}, ErrCredentialsMissing
	}
	if t.registration == nil || !t.registration.Configured() {
		return GuestToken{}, ErrNotConfigured
	}

	info := t.registration.Snapshot()
	token, err := t.api.CreateGuestToken(ctx, []string{info.AddressID}, t.now().Add(guestTokenTTL))
	if err != nil {
		return GuestToken{}, fmt.Errorf("create guest token: %w", err)
	}
	return GuestToken{Token: token, Address: info.Address}, nil
}
