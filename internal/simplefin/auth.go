package simplefin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/bankpulse/internal/common"
)

// AuthState is the saved result of claiming a setup token.
type AuthState struct {
	ClaimedAt  time.Time `json:"claimed_at"`
	AccessURL  string    `json:"access_url"`
	ClaimToken string    `json:"claim_token_hint"`
}

// Authenticator claims setup tokens and remembers the access URL in stateFile.
type Authenticator struct {
	httpClient *http.Client
	stateFile  string
}

// NewAuthenticator stores state at stateFile, or under the XDG data dir when empty.
func NewAuthenticator(stateFile string, httpClient *http.Client) (*Authenticator, error) {
	if stateFile == "" {
		path, err := defaultStateFile()
		if err != nil {
			return nil, fmt.Errorf("failed to get state file path: %w", err)
		}
		stateFile = path
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Authenticator{stateFile: stateFile, httpClient: httpClient}, nil
}

// AccessURL returns the saved access URL, claiming token when none is saved.
func (a *Authenticator) AccessURL(ctx context.Context, token string) (string, error) {
	if auth, err := a.load(); err == nil && auth.AccessURL != "" {
		slog.Debug("Using saved SimpleFIN access URL", "claimed_at", auth.ClaimedAt.Format("2006-01-02"))
		return auth.AccessURL, nil
	}
	if token == "" {
		return "", common.NewUserError("no SimpleFIN access saved; set simplefin.token to a setup token", common.ErrMissingConfig)
	}

	slog.Info("Claiming SimpleFIN setup token")
	accessURL, err := a.claim(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to claim token: %w", err)
	}

	state := &AuthState{AccessURL: accessURL, ClaimedAt: time.Now().UTC(), ClaimToken: tokenHint(token)}
	if err := a.save(state); err != nil {
		return "", fmt.Errorf("failed to save auth state: %w", err)
	}
	return accessURL, nil
}

// claim exchanges a base64 claim URL for an access URL. Tokens are single use.
func (a *Authenticator) claim(ctx context.Context, token string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(token)
		if err != nil {
			return "", fmt.Errorf("failed to decode SimpleFIN token: %w", err)
		}
	}
	claimURL := strings.TrimSpace(string(decoded))
	if !isHTTPURL(claimURL) {
		return "", fmt.Errorf("%w: decoded token is not a URL", common.ErrInvalidConfig)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create claim request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to claim access URL: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read access URL: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: claim returned %d", ErrAPI, resp.StatusCode)
	}

	accessURL := strings.TrimSpace(string(body))
	if !isHTTPURL(accessURL) {
		return "", fmt.Errorf("%w: invalid access URL received", ErrAPI)
	}
	return accessURL, nil
}

func (a *Authenticator) load() (*AuthState, error) {
	data, err := os.ReadFile(a.stateFile)
	if err != nil {
		return nil, err
	}
	var auth AuthState
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (a *Authenticator) save(auth *AuthState) error {
	if err := os.MkdirAll(filepath.Dir(a.stateFile), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return err
	}
	// The access URL embeds credentials.
	return os.WriteFile(a.stateFile, data, 0o600)
}

func defaultStateFile() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "pulse", "simplefin_auth.json"), nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

func tokenHint(token string) string {
	if len(token) > 16 {
		return token[:8] + "..." + token[len(token)-8:]
	}
	return "short_token"
}
