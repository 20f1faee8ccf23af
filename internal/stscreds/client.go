package stscreds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// DefaultRegion is used when neither Options nor the SDK's own lookup
// (AWS_REGION, AWS_DEFAULT_REGION, profile) yields a region.
const DefaultRegion = "us-east-1"

// ErrNoCredentials is returned when STS answers successfully but without a
// credentials block.
var ErrNoCredentials = errors.New("STS response contained no credentials")

// Credentials is a temporary credential bundle issued for a role.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
	RoleARN         string
}

// Provider exchanges a role ARN and session name for temporary credentials.
type Provider interface {
	AssumeRole(ctx context.Context, roleARN, sessionName string) (*Credentials, error)
}

// STSAssumeRoler is the subset of *sts.Client used here (enables testing).
type STSAssumeRoler interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Options configures a Client.
type Options struct {
	// Region for the STS client. Empty defers to the SDK, then DefaultRegion.
	Region string
	// Endpoint overrides the STS endpoint URL (e.g. a regional or local
	// emulator endpoint). Empty uses the SDK's resolution.
	Endpoint string
	// SessionDuration requested from STS. Zero leaves it to STS (1h).
	SessionDuration time.Duration
	// ExternalID is passed through when the role's trust policy requires it.
	ExternalID string
}

// Client implements Provider on top of the AWS SDK STS client.
type Client struct {
	api    STSAssumeRoler
	opts   Options
	region string
}

var _ Provider = (*Client)(nil)

// New loads the default AWS configuration from the host environment and
// returns a Client backed by a real STS client.
func New(ctx context.Context, opts Options) (*Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = DefaultRegion
	}

	api := sts.NewFromConfig(awsCfg, func(o *sts.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	c := NewWithSTS(api, opts)
	c.region = awsCfg.Region
	return c, nil
}

// NewWithSTS returns a Client using the given STS API.
func NewWithSTS(api STSAssumeRoler, opts Options) *Client {
	return &Client{api: api, opts: opts, region: opts.Region}
}

// Region returns the region requests are signed for.
func (c *Client) Region() string {
	return c.region
}

// AssumeRole calls STS AssumeRole once.
func (c *Client) AssumeRole(ctx context.Context, roleARN, sessionName string) (*Credentials, error) {
	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
	}
	if c.opts.SessionDuration > 0 {
		input.DurationSeconds = aws.Int32(int32(c.opts.SessionDuration.Seconds()))
	}
	if c.opts.ExternalID != "" {
		input.ExternalId = aws.String(c.opts.ExternalID)
	}

	out, err := c.api.AssumeRole(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("assuming role %s: %w", roleARN, err)
	}
	if out == nil || out.Credentials == nil {
		return nil, fmt.Errorf("assuming role %s: %w", roleARN, ErrNoCredentials)
	}

	return &Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Expiration:      aws.ToTime(out.Credentials.Expiration).UTC(),
		RoleARN:         roleARN,
	}, nil
}

// ErrorCode returns the AWS API error code carried by err (for example
// "AccessDenied"), or "" when err did not come from an API response.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
