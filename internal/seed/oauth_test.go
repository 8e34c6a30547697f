package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
	gsheet "google.golang.org/api/sheets/v4"
)

const testOAuthClient = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := SaveToken(path, want); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("LoadToken() = %+v, want %+v", got, want)
	}
}

func TestLoadTokenRejectsEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{"token_type":"Bearer"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadToken(path); err == nil || !strings.Contains(err.Error(), "no credentials") {
		t.Fatalf("LoadToken() error = %v, want empty-token error", err)
	}
}

func TestOAuthClientConfig(t *testing.T) {
	cfg, err := OAuthConfig{ClientJSON: testOAuthClient}.ClientConfig()
	if err != nil {
		t.Fatalf("ClientConfig: %v", err)
	}
	if cfg.ClientID != "id.apps.googleusercontent.com" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != gsheet.SpreadsheetsReadonlyScope {
		t.Errorf("Scopes = %v, want read-only", cfg.Scopes)
	}

	if _, err := (OAuthConfig{}).ClientConfig(); err == nil {
		t.Error("ClientConfig() without a client should fail")
	}
}

func TestOAuthTokenSourceNeedsToken(t *testing.T) {
	c := OAuthConfig{ClientJSON: testOAuthClient, TokenFile: filepath.Join(t.TempDir(), "missing.json")}
	if !c.Enabled() {
		t.Fatal("Enabled() = false with a token file")
	}
	if _, err := c.TokenSource(context.Background()); err == nil {
		t.Error("TokenSource() with a missing token file should fail")
	}
}
