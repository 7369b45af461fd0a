// Package client provides OAuth2 client setup for the Google Sheets writer.
package client

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// callbackAddr is the loopback listener; the port is picked by the OS.
	callbackAddr = "127.0.0.1:0"
	callbackPath = "/callback"
	// serverTimeout is how long to wait for the OAuth callback.
	serverTimeout = 5 * time.Minute
)

// Config locates the OAuth client secret and the cached token.
type Config struct {
	// SecretFile is the desktop OAuth client JSON downloaded from the
	// Google Cloud console.
	SecretFile string
	// TokenFile caches the token obtained by Authorize.
	TokenFile string
	Scopes    []string
}

// New creates an HTTP client from the cached token. It never starts the
// browser flow; run Authorize first.
func New(ctx context.Context, cfg Config) (*http.Client, error) {
	config, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tok, err := TokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("loading token: %w (run the setup command to authenticate)", err)
	}
	return config.Client(ctx, tok), nil
}

// Authorize runs the browser consent flow and stores the token in
// cfg.TokenFile.
func Authorize(ctx context.Context, cfg Config) (*http.Client, error) {
	config, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("initiating OAuth flow")
	tok, err := getTokenFromWeb(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := SaveToken(cfg.TokenFile, tok); err != nil {
		return nil, err
	}
	return config.Client(ctx, tok), nil
}

func oauthConfig(cfg Config) (*oauth2.Config, error) {
	if cfg.TokenFile == "" {
		return nil, fmt.Errorf("token file is required")
	}

	b, err := os.ReadFile(cfg.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, cfg.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}
	return config, nil
}

// callbackResult is the outcome of one redirect to the loopback server.
type callbackResult struct {
	code string
	err  error
}

// callback receives the OAuth redirect. Only the first redirect counts.
type callback struct {
	state  string
	result chan callbackResult
}

func newCallback(state string) *callback {
	return &callback{state: state, result: make(chan callbackResult, 1)}
}

func (c *callback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var res callbackResult
	switch {
	case q.Get("state") != c.state:
		res.err = errors.New("invalid state parameter")
	case q.Get("error") != "":
		res.err = fmt.Errorf("%s: %s", q.Get("error"), q.Get("error_description"))
	case q.Get("code") == "":
		res.err = errors.New("no authorization code received")
	default:
		res.code = q.Get("code")
	}

	if res.err != nil {
		http.Error(w, "Authentication failed: "+res.err.Error(), http.StatusBadRequest)
	} else {
		fmt.Fprintln(w, "Authentication successful. You can close this window and return to the terminal.")
	}

	c.deliver(res)
}

func (c *callback) deliver(res callbackResult) {
	select {
	case c.result <- res:
	default:
	}
}

func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state token: %w", err)
	}

	// Desktop clients accept any loopback port.
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", callbackAddr)
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}
	config.RedirectURL = "http://" + listener.Addr().String() + callbackPath

	cb := newCallback(state)
	mux := http.NewServeMux()
	mux.Handle(callbackPath, cb)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.deliver(callbackResult{err: err})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Printf("\nOpening browser for Google authentication...\n")
	fmt.Printf("If the browser doesn't open automatically, visit this URL:\n%s\n\n", authURL)
	if err := openBrowser(ctx, authURL); err != nil {
		slog.Warn("failed to open browser automatically", "error", err)
	}

	select {
	case res := <-cb.result:
		if res.err != nil {
			return nil, fmt.Errorf("oauth callback error: %w", res.err)
		}
		tok, err := config.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("exchanging authorization code for token: %w", err)
		}
		fmt.Println("Authentication successful!")
		return tok, nil
	case <-time.After(serverTimeout):
		return nil, fmt.Errorf("oauth flow timed out after %v", serverTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

func openBrowser(ctx context.Context, url string) error {
	argv, ok := browserCommands[runtime.GOOS]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	args := append(argv[1:len(argv):len(argv)], url)
	return exec.CommandContext(ctx, argv[0], args...).Start()
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// TokenFromFile reads a cached OAuth token.
func TokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return tok, nil
}

// SaveToken writes token to path, readable by the owner only.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	slog.Info("saved oauth token", "path", path)
	return nil
}
