package config

import (
	"fmt"
	"strings"
)

// RoleARN is a parsed IAM role ARN.
type RoleARN struct {
	Partition string
	AccountID string
	// Name includes any path, e.g. "admin/MyAdminRole".
	Name string
}

// ParseRoleARN validates an IAM role ARN.
// Format: arn:PARTITION:iam::ACCOUNT_ID:role/ROLE_NAME
// Supported partitions: aws, aws-cn, aws-us-gov
func ParseRoleARN(arn string) (RoleARN, error) {
	if arn == "" {
		return RoleARN{}, fmt.Errorf("role ARN is required")
	}

	parts := strings.Split(arn, ":")
	if len(parts) != 6 {
		return RoleARN{}, fmt.Errorf("invalid ARN format: expected 6 colon-separated parts, got %d", len(parts))
	}
	prefix, partition, service, account, resource := parts[0], parts[1], parts[2], parts[4], parts[5]

	if prefix != "arn" {
		return RoleARN{}, fmt.Errorf("invalid ARN: must start with 'arn:'")
	}

	switch partition {
	case "aws", "aws-cn", "aws-us-gov":
	default:
		return RoleARN{}, fmt.Errorf("invalid ARN partition: %s (expected aws, aws-cn, or aws-us-gov)", partition)
	}

	if service != "iam" {
		return RoleARN{}, fmt.Errorf("invalid ARN: must be an IAM ARN (got %s)", service)
	}
	if account == "" {
		return RoleARN{}, fmt.Errorf("invalid ARN: account ID is required")
	}

	name, ok := strings.CutPrefix(resource, "role/")
	if !ok {
		return RoleARN{}, fmt.Errorf("invalid ARN: must be a role ARN (got %s)", resource)
	}
	if name == "" {
		return RoleARN{}, fmt.Errorf("invalid ARN: role name is required")
	}

	return RoleARN{Partition: partition, AccountID: account, Name: name}, nil
}
