package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"taskforge/internal/config"
)

const (
	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	// CallbackTimeout bounds how long Login waits for the browser redirect.
	CallbackTimeout = 5 * time.Minute

	exchangeTimeout  = 30 * time.Second
	validateTimeout  = 10 * time.Second
	callbackPort     = 8085
	callbackAttempts = 5
)

// ErrNoOAuthClient is returned when oauth_client.json is missing.
var ErrNoOAuthClient = errors.New("oauth_client.json not found")

// OAuthConfig reads the desktop OAuth client from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoOAuthClient
		}
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oc, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oc, nil
}

// LoadToken reads token.json.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	return &tok, nil
}

// SaveToken writes the token with mode 0600.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// HTTPClient returns an HTTP client whose token refreshes automatically.
func HTTPClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	oc, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, oc.TokenSource(ctx, tok)), nil
}

// TokenValid reports whether the stored token has a refresh token and can
// still be exchanged for an access token.
func TokenValid(ctx context.Context, cfg *config.Config) bool {
	tok, err := LoadToken(cfg.TokenPath())
	if err != nil || tok.RefreshToken == "" {
		return false
	}
	oc, err := OAuthConfig(cfg)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()
	_, err = oc.TokenSource(ctx, tok).Token()
	return err == nil
}

// Login runs the installed-app flow with PKCE: it prints the consent URL to
// prompt, waits for the local callback, and saves the exchanged token.
func Login(ctx context.Context, cfg *config.Config, prompt io.Writer) error {
	oc, err := OAuthConfig(cfg)
	if err != nil {
		return err
	}

	port, listener, err := listenCallback()
	if err != nil {
		return errors.New("could not bind to local port for OAuth callback")
	}
	defer listener.Close()

	oc.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	authURL := oc.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	fmt.Fprintln(prompt, "Open this URL in your browser:")
	fmt.Fprintln(prompt, authURL)

	code, err := awaitCode(ctx, listener)
	if err != nil {
		return err
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	tok, err := oc.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := cfg.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := SaveToken(cfg.TokenPath(), tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// awaitCode serves the redirect endpoint until a code arrives.
func awaitCode(ctx context.Context, listener net.Listener) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			select {
			case errCh <- errors.New("no code in callback"):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>taskforge is connected</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(CallbackTimeout):
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}

func listenCallback() (int, net.Listener, error) {
	for i := 0; i < callbackAttempts; i++ {
		port := callbackPort + i
		l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, l, nil
		}
	}
	return 0, nil, errors.New("no available port found")
}
