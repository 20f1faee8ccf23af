// Package credclient fetches credentials from a running credential endpoint
// and converts them for tools that only understand credential_process.
package credclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/majorcontext/assumer/internal/credserver"
	"github.com/majorcontext/assumer/internal/supervisor"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// ProcessCredentials is the credential_process output format.
// See: https://docs.aws.amazon.com/cli/latest/userguide/cli-configure-sourcing-external.html
type ProcessCredentials struct {
	Version         int    `json:"Version"`
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
	Expiration      string `json:"Expiration"`
}

// FromEnv returns the endpoint URI and token injected by the supervisor.
func FromEnv(getenv func(string) string) (uri, token string, err error) {
	uri = getenv(supervisor.EnvCredentialsFullURI)
	if uri == "" {
		return "", "", fmt.Errorf("%s not set", supervisor.EnvCredentialsFullURI)
	}
	return uri, getenv(supervisor.EnvAuthorizationToken), nil
}

// Fetch performs one GET against the endpoint.
func Fetch(ctx context.Context, client *http.Client, uri, token string) (*credserver.CredentialsResponse, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("credential endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var creds credserver.CredentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("decoding credentials: %w", err)
	}
	if creds.AccessKeyID == "" {
		return nil, errors.New("credential endpoint returned no access key")
	}
	return &creds, nil
}

// ToProcess converts an endpoint response to credential_process format.
func ToProcess(c *credserver.CredentialsResponse) ProcessCredentials {
	return ProcessCredentials{
		Version:         1,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.Token,
		Expiration:      time.Time(c.Expiration).UTC().Format(time.RFC3339),
	}
}
