package supervisor

import (
	"fmt"
	"strings"

	"github.com/majorcontext/assumer/internal/credserver"
)

// Environment variables read by AWS SDKs.
const (
	EnvAuthorizationToken    = "AWS_CONTAINER_AUTHORIZATION_TOKEN"
	EnvCredentialsFullURI    = "AWS_CONTAINER_CREDENTIALS_FULL_URI"
	EnvSharedCredentialsFile = "AWS_SHARED_CREDENTIALS_FILE"
)

// staticCredentialVars are removed from the child's environment so the SDK
// credential chain falls through to the container endpoint.
var staticCredentialVars = []string{
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AWS_SESSION_TOKEN",
	"AWS_PROFILE",
}

// CredentialsURI returns the endpoint URI injected into the child.
func CredentialsURI(port uint16) string {
	return fmt.Sprintf("http://localhost:%d%s", port, credserver.CredentialsPath)
}

// Env returns base with static AWS credentials removed and the container
// credential variables set for the endpoint on port.
func Env(base []string, port uint16, token string) []string {
	drop := make(map[string]bool, len(staticCredentialVars)+3)
	for _, k := range staticCredentialVars {
		drop[k] = true
	}
	drop[EnvAuthorizationToken] = true
	drop[EnvCredentialsFullURI] = true
	drop[EnvSharedCredentialsFile] = true

	env := make([]string, 0, len(base)+3)
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if drop[k] {
			continue
		}
		env = append(env, kv)
	}

	return append(env,
		EnvAuthorizationToken+"="+token,
		EnvCredentialsFullURI+"="+CredentialsURI(port),
		EnvSharedCredentialsFile+"=/dev/null",
	)
}
