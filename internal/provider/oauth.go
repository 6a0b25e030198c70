// Package provider implements federated identity providers reached through an OAuth2 redirect.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/dtroode/postit-wall/internal/config"
	"github.com/dtroode/postit-wall/internal/model"
)

var _ model.FederatedProvider = (*OAuth2)(nil)

// maxUserInfoSize limits the userinfo response body read into memory.
const maxUserInfoSize = 1 << 20

// OAuth2 is an authorization code flow provider that identifies users by the userinfo "sub" claim.
type OAuth2 struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
}

// NewOAuth2 creates a provider from OAuth configuration.
func NewOAuth2(cfg config.OAuth) *OAuth2 {
	return &OAuth2{
		name: cfg.Provider,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

func (p *OAuth2) Name() string {
	return p.name
}

// AuthURL returns the provider consent page URL carrying state.
func (p *OAuth2) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the provider's stable subject identifier.
func (p *OAuth2) Exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("authorization code is empty")
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoSize)).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return "", fmt.Errorf("userinfo has no subject")
	}

	return info.Sub, nil
}
