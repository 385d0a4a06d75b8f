package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"spesa/internal/cli"
	gsheet "spesa/internal/sheets/google"
)

// sheetsAuthCmd runs the installed-app OAuth flow once and saves a refresh
// token for the export worker.
func sheetsAuthCmd(a *app) *cobra.Command {
	var (
		port    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize the Sheets export with a Google user account",
		Long: "sheets-auth reads the OAuth client from GOOGLE_OAUTH_CLIENT_FILE, prints a consent URL and\n" +
			"waits for the redirect on localhost. The token is written to GOOGLE_OAUTH_TOKEN_FILE\n" +
			"(default token.json). Add http://localhost:<port>/callback to the client's redirect URIs.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.GoogleOAuthClientFile == "" {
				return errors.New("set GOOGLE_OAUTH_CLIENT_FILE")
			}
			clientJSON, err := os.ReadFile(a.cfg.GoogleOAuthClientFile)
			if err != nil {
				return fmt.Errorf("read client file: %w", err)
			}
			oauthCfg, err := gsheet.OAuthConfig(clientJSON, "http://localhost:"+port+"/callback")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			tok, err := authorize(ctx, cmd, oauthCfg, port)
			if err != nil {
				return err
			}

			out := a.cfg.GoogleOAuthTokenFile
			if out == "" {
				out = "token.json"
			}
			if err := gsheet.SaveToken(out, tok); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.Success("Saved token to "+out))
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "redirect-port", "8085", "local port for the OAuth redirect")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for consent")
	return cmd
}

func authorize(ctx context.Context, cmd *cobra.Command, cfg *oauth2.Config, port string) (*oauth2.Token, error) {
	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "OAuth error: "+q.Get("error"), http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization denied: %s", q.Get("error")):
			default:
			}
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
		default:
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
			select {
			case codeCh <- q.Get("code"):
			default:
			}
		}
	})

	ln, err := net.Listen("tcp", "localhost:"+port)
	if err != nil {
		return nil, fmt.Errorf("listen for redirect: %w", err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n",
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization not completed: %w", ctx.Err())
	}
}
