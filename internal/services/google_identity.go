package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fitbook/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// GoogleIdentity verifies Google ID tokens and runs the authorization-code
// redirect flow.
type GoogleIdentity struct {
	clientID string
	oauth    *oauth2.Config
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleIdentity(cfg config.GoogleConfig) *GoogleIdentity {
	return &GoogleIdentity{
		clientID: cfg.ClientID,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
}

func (g *GoogleIdentity) VerifyIDToken(ctx context.Context, rawIDToken string) (*Identity, error) {
	if g.clientID == "" {
		return nil, errors.New("google sign-in is not configured")
	}
	payload, err := g.validate(ctx, rawIDToken, g.clientID)
	if err != nil {
		return nil, err
	}
	return identityFromPayload(payload)
}

func (g *GoogleIdentity) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *GoogleIdentity) Exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, errors.New("token response has no id_token")
	}
	return g.VerifyIDToken(ctx, raw)
}

func identityFromPayload(p *idtoken.Payload) (*Identity, error) {
	email, _ := p.Claims["email"].(string)
	if p.Subject == "" || strings.TrimSpace(email) == "" {
		return nil, errors.New("identity token lacks subject or email")
	}
	if verified, ok := p.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("email address is not verified")
	}
	name, _ := p.Claims["name"].(string)
	return &Identity{
		Subject: p.Subject,
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Name:    strings.TrimSpace(name),
	}, nil
}
