package utils

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the subset of a Google ID token EcoHub uses.
type GoogleIdentity struct {
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// GoogleVerifier checks a Google Sign-In credential.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}

var ErrGoogleNotConfigured = errors.New("google login is not configured")

// IDTokenVerifier validates credentials against Google's public keys.
type IDTokenVerifier struct {
	ClientID string
}

func (v *IDTokenVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	if v.ClientID == "" {
		return nil, ErrGoogleNotConfigured
	}
	payload, err := idtoken.Validate(ctx, credential, v.ClientID)
	if err != nil {
		return nil, err
	}
	id := &GoogleIdentity{}
	id.Email, _ = payload.Claims["email"].(string)
	id.EmailVerified, _ = payload.Claims["email_verified"].(bool)
	id.GivenName, _ = payload.Claims["given_name"].(string)
	id.FamilyName, _ = payload.Claims["family_name"].(string)
	return id, nil
}
