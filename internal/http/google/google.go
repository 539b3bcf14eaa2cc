// Package google verifies Google sign-in access tokens and fetches the
// signed-in user's profile.
package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrNoClientID      = errors.New("google client id is not configured")
	ErrWrongAudience   = errors.New("token was not issued for this application")
	ErrEmailMissing    = errors.New("google account has no email")
	ErrEmailUnverified = errors.New("google account email is not verified")
)

// Profile is the subset of Google account data used to create accounts.
type Profile struct {
	ID            string
	Email         string
	VerifiedEmail bool
	GivenName     string
	FamilyName    string
	Picture       string
}

type Client struct {
	ClientID string
	options  []option.ClientOption
}

// NewClient checks token audience against clientID when it is set.
func NewClient(clientID string, opts ...option.ClientOption) *Client {
	return &Client{ClientID: clientID, options: opts}
}

// Profile validates accessToken and returns the account behind it.
func (c *Client) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	if c.ClientID == "" {
		return nil, ErrNoClientID
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.options...)

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}

	token, err := svc.Tokeninfo().AccessToken(accessToken).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("token info: %w", err)
	}
	if err := checkAudience(c.ClientID, token.Audience, token.IssuedTo); err != nil {
		return nil, err
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("user info: %w", err)
	}
	return toProfile(info)
}

func checkAudience(clientID string, audiences ...string) error {
	for _, aud := range audiences {
		if aud == clientID {
			return nil
		}
	}
	return ErrWrongAudience
}

func toProfile(info *oauth2api.Userinfo) (*Profile, error) {
	if info.Email == "" {
		return nil, ErrEmailMissing
	}
	verified := info.VerifiedEmail != nil && *info.VerifiedEmail
	if !verified {
		return nil, ErrEmailUnverified
	}
	return &Profile{
		ID:            info.Id,
		Email:         info.Email,
		VerifiedEmail: verified,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		Picture:       info.Picture,
	}, nil
}
