package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const clientJSON = `{"installed":{"client_id":"client-1","client_secret":"s3cret",
"auth_uri":"https://accounts.example.com/auth","token_uri":"https://accounts.example.com/token",
"redirect_uris":["http://localhost"]}}`

func TestOAuthConfig(t *testing.T) {
	cfg, err := OAuthConfig([]byte(clientJSON), "http://localhost:8085/callback")
	require.NoError(t, err)
	assert.Equal(t, "client-1", cfg.ClientID)
	assert.Equal(t, "http://localhost:8085/callback", cfg.RedirectURL)
	assert.Contains(t, cfg.Scopes, "https://www.googleapis.com/auth/spreadsheets")

	_, err = OAuthConfig([]byte(`{}`), "")
	assert.ErrorContains(t, err, "parse oauth client")
}

func TestSaveTokenIsPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, SaveToken(path, tok))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "r", got.RefreshToken)
}

func TestOAuthTokenSource(t *testing.T) {
	dir := t.TempDir()
	clientFile := filepath.Join(dir, "client.json")
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, os.WriteFile(clientFile, []byte(clientJSON), 0o600))
	require.NoError(t, SaveToken(tokenFile, &oauth2.Token{AccessToken: "live", Expiry: time.Now().Add(time.Hour)}))

	ts, err := Credentials{OAuthClientFile: clientFile, OAuthTokenFile: tokenFile}.tokenSource(context.Background())
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "live", tok.AccessToken)

	_, err = Credentials{OAuthClientFile: clientFile, OAuthTokenFile: filepath.Join(dir, "none.json")}.tokenSource(context.Background())
	assert.ErrorContains(t, err, "read oauth token")
}
