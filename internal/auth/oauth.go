package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var ErrNoIDToken = errors.New("token response carried no id_token")

// OAuth runs the authorization-code flow against Google.
type OAuth struct {
	Config oauth2.Config
}

func NewOAuth(clientID, clientSecret, redirectURL string) *OAuth {
	return &OAuth{Config: oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     endpoints.Google,
		Scopes:       []string{"openid", "email", "profile"},
	}}
}

func (o *OAuth) Configured() bool {
	return o.Config.ClientID != "" && o.Config.ClientSecret != ""
}

// AuthURL asks for offline access and always shows the consent screen.
func (o *OAuth) AuthURL(state string) string {
	return o.Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for the raw ID token.
func (o *OAuth) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := o.Config.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrNoIDToken
	}
	return idToken, nil
}
