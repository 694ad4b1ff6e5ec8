package saleor

import (
	"context"
	"strings"
)

// Token is the credential pair returned by tokenCreate. It lives for one run
// and is never persisted or refreshed.
type Token struct {
	Access  string
	Refresh string
}

type loginData struct {
	TokenCreate *struct {
		Token        *string        `json:"token"`
		RefreshToken *string        `json:"refreshToken"`
		Errors       []AccountError `json:"errors"`
	} `json:"tokenCreate"`
}

// Login exchanges an email/password pair for a token. Credentials are not
// checked locally; any failure comes back as *AuthError.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	var data loginData
	err := c.Mutate(ctx, TokenCreate, map[string]any{
		"email": email,
		"pass":  password,
	}, &data)
	if err != nil {
		return Token{}, &AuthError{Reason: "login request failed", Err: err}
	}

	payload := data.TokenCreate
	if payload == nil {
		return Token{}, &AuthError{Reason: "response has no tokenCreate payload"}
	}
	if len(payload.Errors) > 0 {
		return Token{}, &AuthError{Reason: "credentials rejected", AccountErrors: payload.Errors}
	}
	if payload.Token == nil || strings.TrimSpace(*payload.Token) == "" {
		return Token{}, &AuthError{Reason: "response has no token"}
	}

	token := Token{Access: *payload.Token}
	if payload.RefreshToken != nil {
		token.Refresh = *payload.RefreshToken
	}
	return token, nil
}
