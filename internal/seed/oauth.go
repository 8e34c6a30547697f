package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// OAuthConfig holds desktop OAuth client credentials plus the token saved by
// salestats-oauth-init. It is the alternative to a service account for
// spreadsheets owned by a personal account.
type OAuthConfig struct {
	ClientJSON string
	ClientFile string
	TokenFile  string
}

// Enabled reports whether a token file is configured.
func (c OAuthConfig) Enabled() bool {
	return strings.TrimSpace(c.TokenFile) != ""
}

// ClientConfig parses the OAuth client for read-only spreadsheet access.
func (c OAuthConfig) ClientConfig() (*oauth2.Config, error) {
	var raw []byte
	switch {
	case strings.TrimSpace(c.ClientJSON) != "":
		raw = []byte(c.ClientJSON)
	case strings.TrimSpace(c.ClientFile) != "":
		data, err := os.ReadFile(c.ClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		raw = data
	default:
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}

	cfg, err := google.ConfigFromJSON(raw, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("oauth client config: %w", err)
	}
	return cfg, nil
}

// TokenSource returns a refreshing token source built from the saved token.
func (c OAuthConfig) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cfg, err := c.ClientConfig()
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(c.TokenFile)
	if err != nil {
		return nil, err
	}
	return cfg.TokenSource(ctx, tok), nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode oauth token %s: %w", path, err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("oauth token %s holds no credentials", path)
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}
