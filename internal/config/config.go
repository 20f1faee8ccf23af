// Package config loads the settings for an assumer run.
//
// Values are layered: defaults, then ~/.assumer/config.yaml (or --config),
// then ASSUMER_* environment variables, then command-line flags (applied by
// the CLI). The result is checked once with Validate and not modified after.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/majorcontext/assumer/internal/signals"
	"gopkg.in/yaml.v3"
)

// DefaultListen binds the IPv6 loopback on an ephemeral port.
const DefaultListen = "[::1]:0"

// Session duration bounds accepted by STS AssumeRole.
const (
	MinSessionDuration = 15 * time.Minute
	MaxSessionDuration = 12 * time.Hour
)

// RunConfig holds everything needed for one run.
type RunConfig struct {
	// HTTPListen is the host:port for the credential endpoint. Port 0 picks
	// an ephemeral port.
	HTTPListen string `yaml:"http_listen"`
	// STSEndpoint overrides the STS endpoint URL.
	STSEndpoint string `yaml:"sts_endpoint"`
	Region      string `yaml:"region"`

	RoleARN         string        `yaml:"role_arn"`
	RoleSessionName string        `yaml:"role_session_name"`
	SessionDuration time.Duration `yaml:"session_duration"`
	ExternalID      string        `yaml:"external_id"`

	// AuthToken is the shared token. Empty means generate one.
	AuthToken string `yaml:"auth_token"`

	// ForwardSignals are the signal names that terminate the child.
	ForwardSignals []string `yaml:"forward_signals"`
	// PropagateExitCode makes assumer exit with the child's exit code.
	PropagateExitCode bool `yaml:"propagate_exit_code"`

	Command string   `yaml:"-"`
	Args    []string `yaml:"-"`
}

// Default returns a RunConfig with defaults applied.
func Default() *RunConfig {
	return &RunConfig{
		HTTPListen:     DefaultListen,
		ForwardSignals: append([]string(nil), signals.DefaultNames...),
	}
}

// Dir returns the path to ~/.assumer.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".assumer")
	}
	return filepath.Join(homeDir, ".assumer")
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load returns defaults overlaid with the YAML file at path and the process
// environment. When path is empty the default file is used if it exists.
func Load(path string) (*RunConfig, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *RunConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Environment variable names.
const (
	EnvHTTPListen        = "ASSUMER_HTTP_LISTEN"
	EnvSTSEndpoint       = "ASSUMER_STS_ENDPOINT"
	EnvRegion            = "ASSUMER_REGION"
	EnvRoleARN           = "ASSUMER_ROLE_ARN"
	EnvRoleSessionName   = "ASSUMER_ROLE_SESSION_NAME"
	EnvSessionDuration   = "ASSUMER_SESSION_DURATION"
	EnvExternalID        = "ASSUMER_EXTERNAL_ID"
	EnvAuthToken         = "ASSUMER_AUTH_TOKEN"
	EnvForwardSignals    = "ASSUMER_FORWARD_SIGNALS"
	EnvPropagateExitCode = "ASSUMER_PROPAGATE_EXIT_CODE"
)

// ApplyEnv overrides fields from ASSUMER_* variables found by lookup.
func (c *RunConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvHTTPListen:      &c.HTTPListen,
		EnvSTSEndpoint:     &c.STSEndpoint,
		EnvRegion:          &c.Region,
		EnvRoleARN:         &c.RoleARN,
		EnvRoleSessionName: &c.RoleSessionName,
		EnvExternalID:      &c.ExternalID,
		EnvAuthToken:       &c.AuthToken,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvSessionDuration); ok && v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSessionDuration, err)
		}
		c.SessionDuration = d
	}
	if v, ok := lookup(EnvForwardSignals); ok && v != "" {
		c.ForwardSignals = splitList(v)
	}
	if v, ok := lookup(EnvPropagateExitCode); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPropagateExitCode, err)
		}
		c.PropagateExitCode = b
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// sessionNamePattern matches the RoleSessionName constraint of AssumeRole.
var sessionNamePattern = regexp.MustCompile(`^[\w+=,.@-]{2,64}$`)

// Validate checks the configuration. All problems are reported together.
func (c *RunConfig) Validate() error {
	var errs []error

	if _, err := ParseRoleARN(c.RoleARN); err != nil {
		errs = append(errs, err)
	}
	if !sessionNamePattern.MatchString(c.RoleSessionName) {
		errs = append(errs, fmt.Errorf("invalid role session name %q: must be 2-64 characters of letters, digits and +=,.@_-", c.RoleSessionName))
	}
	if err := validateListen(c.HTTPListen); err != nil {
		errs = append(errs, err)
	}
	if c.STSEndpoint != "" {
		if err := validateEndpoint(c.STSEndpoint); err != nil {
			errs = append(errs, err)
		}
	}
	if c.SessionDuration != 0 && (c.SessionDuration < MinSessionDuration || c.SessionDuration > MaxSessionDuration) {
		errs = append(errs, fmt.Errorf("session duration %s out of range (%s to %s)", c.SessionDuration, MinSessionDuration, MaxSessionDuration))
	}
	if _, err := signals.Parse(c.ForwardSignals); err != nil {
		errs = append(errs, err)
	}
	if c.Command == "" {
		errs = append(errs, errors.New("command is required"))
	}

	return errors.Join(errs...)
}

func validateListen(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("invalid listen port %q", port)
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid STS endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid STS endpoint %q: must be an absolute http or https URL", endpoint)
	}
	return nil
}
