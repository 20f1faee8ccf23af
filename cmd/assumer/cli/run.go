package cli

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/majorcontext/assumer/internal/assumer"
	"github.com/majorcontext/assumer/internal/config"
	"github.com/majorcontext/assumer/internal/log"
	"github.com/majorcontext/assumer/internal/signals"
	"github.com/spf13/cobra"
)

type runFlags struct {
	configPath        string
	httpListen        string
	stsEndpoint       string
	region            string
	roleARN           string
	roleSessionName   string
	authToken         string
	sessionDuration   string
	externalID        string
	forwardSignals    []string
	propagateExitCode bool
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run [flags] [--] COMMAND [ARGS...]",
	Short: "Run a command with credentials served from a local endpoint",
	Long: `Run COMMAND with AWS_CONTAINER_CREDENTIALS_FULL_URI and
AWS_CONTAINER_AUTHORIZATION_TOKEN pointing at a loopback credential endpoint.
Every request to the endpoint assumes --role-arn through STS and returns
the temporary credentials. Static AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
AWS_SESSION_TOKEN and AWS_PROFILE are removed from the child's environment.

SIGTERM, SIGINT and SIGQUIT are forwarded to the child as SIGTERM. assumer
exits when the child does.

Settings are read from ~/.assumer/config.yaml (or --config), then ASSUMER_*
environment variables, then flags.

Examples:
  # List buckets with a role's credentials
  assumer run --role-arn arn:aws:iam::123456789012:role/ReadOnly \
    --role-session-name $USER -- aws s3 ls

  # Use a regional STS endpoint and a fixed port
  assumer run --sts-endpoint https://sts.eu-west-1.amazonaws.com \
    --region eu-west-1 --http-listen 127.0.0.1:9911 -- ./deploy.sh`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssumer,
}

func init() {
	bindRunFlags(runCmd, &runOpts)
	rootCmd.AddCommand(runCmd)
}

func bindRunFlags(cmd *cobra.Command, o *runFlags) {
	f := cmd.Flags()
	f.SetInterspersed(false)
	f.StringVar(&o.configPath, "config", "", "config file (default ~/.assumer/config.yaml)")
	f.StringVar(&o.httpListen, "http-listen", config.DefaultListen, "host:port for the credential endpoint; port 0 picks a free port (env: ASSUMER_HTTP_LISTEN)")
	f.StringVar(&o.stsEndpoint, "sts-endpoint", "", "override the STS endpoint URL (env: ASSUMER_STS_ENDPOINT)")
	f.StringVar(&o.region, "region", "", "AWS region for STS (env: ASSUMER_REGION)")
	f.StringVar(&o.roleARN, "role-arn", "", "IAM role to assume (env: ASSUMER_ROLE_ARN)")
	f.StringVar(&o.roleSessionName, "role-session-name", "", "STS role session name (env: ASSUMER_ROLE_SESSION_NAME)")
	f.StringVar(&o.authToken, "auth-token", "", "shared token for the endpoint; random if unset (env: ASSUMER_AUTH_TOKEN)")
	f.StringVar(&o.sessionDuration, "session-duration", "", "credential lifetime, 15m to 12h (env: ASSUMER_SESSION_DURATION)")
	f.StringVar(&o.externalID, "external-id", "", "external ID required by the role's trust policy (env: ASSUMER_EXTERNAL_ID)")
	f.StringSliceVar(&o.forwardSignals, "forward-signal", nil, "signals that terminate the child (default TERM,INT,QUIT) (env: ASSUMER_FORWARD_SIGNALS)")
	f.BoolVar(&o.propagateExitCode, "propagate-exit-code", false, "exit with the child's exit code (env: ASSUMER_PROPAGATE_EXIT_CODE)")
}

// buildRunConfig layers flags the user set over file and environment values.
func buildRunConfig(cmd *cobra.Command, o *runFlags, args []string) (*config.RunConfig, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	strs := map[string]struct {
		dst *string
		src string
	}{
		"http-listen":       {&cfg.HTTPListen, o.httpListen},
		"sts-endpoint":      {&cfg.STSEndpoint, o.stsEndpoint},
		"region":            {&cfg.Region, o.region},
		"role-arn":          {&cfg.RoleARN, o.roleARN},
		"role-session-name": {&cfg.RoleSessionName, o.roleSessionName},
		"auth-token":        {&cfg.AuthToken, o.authToken},
		"external-id":       {&cfg.ExternalID, o.externalID},
	}
	for name, v := range strs {
		if flags.Changed(name) {
			*v.dst = v.src
		}
	}
	if flags.Changed("session-duration") {
		d, err := config.ParseDuration(o.sessionDuration)
		if err != nil {
			return nil, fmt.Errorf("--session-duration: %w", err)
		}
		cfg.SessionDuration = d
	}
	if flags.Changed("forward-signal") {
		cfg.ForwardSignals = o.forwardSignals
	}
	if flags.Changed("propagate-exit-code") {
		cfg.PropagateExitCode = o.propagateExitCode
	}

	cfg.Command = args[0]
	cfg.Args = args[1:]

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func runAssumer(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, &runOpts, args)
	if err != nil {
		return err
	}
	log.SetRole(cfg.RoleARN)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigs, err := signals.Parse(cfg.ForwardSignals)
	if err != nil {
		return err
	}
	forwarded := signals.Forward(ctx, sigs)

	ready := make(chan netip.AddrPort, 1)
	go func() {
		select {
		case addr := <-ready:
			log.Info("server ready", "addr", addr.String())
		case <-ctx.Done():
		}
	}()

	log.Debug("starting run",
		"listen", cfg.HTTPListen,
		"command", cfg.Command,
		"args", cfg.Args,
		"session_name", cfg.RoleSessionName)

	out, err := assumer.Run(ctx, cfg, assumer.Deps{
		Signals: forwarded,
		Ready:   ready,
	})
	if err != nil {
		return err
	}

	log.Info("child exited", "code", out.Exit.Code, "signaled", out.Exit.Signaled())
	if cfg.PropagateExitCode && out.Exit.Code != 0 {
		return &ExitCodeError{Code: out.Exit.Code}
	}
	return nil
}
