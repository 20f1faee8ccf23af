package config

import (
	"strings"
	"testing"
)

func TestParseRoleARN(t *testing.T) {
	tests := []struct {
		name     string
		arn      string
		wantName string
		wantErr  string
	}{
		{name: "valid ARN", arn: "arn:aws:iam::123456789012:role/MyRole", wantName: "MyRole"},
		{name: "valid ARN with path", arn: "arn:aws:iam::123456789012:role/admin/MyAdminRole", wantName: "admin/MyAdminRole"},
		{name: "aws-cn partition", arn: "arn:aws-cn:iam::123456789012:role/MyRole", wantName: "MyRole"},
		{name: "aws-us-gov partition", arn: "arn:aws-us-gov:iam::123456789012:role/MyRole", wantName: "MyRole"},
		{name: "empty ARN", arn: "", wantErr: "role ARN is required"},
		{name: "not enough parts", arn: "arn:aws:iam", wantErr: "expected 6 colon-separated parts"},
		{name: "wrong prefix", arn: "arm:aws:iam::123456789012:role/MyRole", wantErr: "must start with 'arn:'"},
		{name: "invalid partition", arn: "arn:aws-invalid:iam::123456789012:role/MyRole", wantErr: "invalid ARN partition"},
		{name: "not IAM service", arn: "arn:aws:s3::123456789012:role/MyRole", wantErr: "must be an IAM ARN"},
		{name: "missing account ID", arn: "arn:aws:iam:::role/MyRole", wantErr: "account ID is required"},
		{name: "not a role", arn: "arn:aws:iam::123456789012:user/MyUser", wantErr: "must be a role ARN"},
		{name: "role without name", arn: "arn:aws:iam::123456789012:role/", wantErr: "role name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoleARN(tt.arn)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseRoleARN(%q) = nil error, want error containing %q", tt.arn, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ParseRoleARN(%q) error = %q, want error containing %q", tt.arn, err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRoleARN(%q) unexpected error: %v", tt.arn, err)
			}
			if got.Name != tt.wantName {
				t.Errorf("ParseRoleARN(%q).Name = %q, want %q", tt.arn, got.Name, tt.wantName)
			}
			if got.AccountID != "123456789012" {
				t.Errorf("ParseRoleARN(%q).AccountID = %q", tt.arn, got.AccountID)
			}
		})
	}
}
