package supervisor

import (
	"strings"
	"testing"
)

func TestCredentialsURI(t *testing.T) {
	if got, want := CredentialsURI(41234), "http://localhost:41234/get-credentials"; got != want {
		t.Errorf("CredentialsURI() = %q, want %q", got, want)
	}
}

func TestEnv(t *testing.T) {
	base := []string{
		"PATH=/usr/bin:/bin",
		"HOME=/home/dev",
		"AWS_REGION=eu-west-1",
		"AWS_ACCESS_KEY_ID=AKIASTATIC",
		"AWS_SECRET_ACCESS_KEY=static-secret",
		"AWS_SESSION_TOKEN=static-session",
		"AWS_PROFILE=prod",
		"AWS_SHARED_CREDENTIALS_FILE=/home/dev/.aws/credentials",
		"AWS_CONTAINER_CREDENTIALS_FULL_URI=http://169.254.170.23/v1/credentials",
		"AWS_CONTAINER_AUTHORIZATION_TOKEN=stale",
		"AWS_ACCESS_KEY_ID_SUFFIX=kept",
	}

	env := Env(base, 8123, "tok")

	got := make(map[string][]string)
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		got[k] = append(got[k], v)
	}

	for _, k := range []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN", "AWS_PROFILE"} {
		if _, ok := got[k]; ok {
			t.Errorf("%s should be removed, got %v", k, got[k])
		}
	}

	want := map[string]string{
		"PATH":                     "/usr/bin:/bin",
		"HOME":                     "/home/dev",
		"AWS_REGION":               "eu-west-1",
		"AWS_ACCESS_KEY_ID_SUFFIX": "kept",
		EnvAuthorizationToken:      "tok",
		EnvCredentialsFullURI:      "http://localhost:8123/get-credentials",
		EnvSharedCredentialsFile:   "/dev/null",
	}
	for k, v := range want {
		if len(got[k]) != 1 || got[k][0] != v {
			t.Errorf("%s = %v, want exactly [%q]", k, got[k], v)
		}
	}
}

func TestEnv_DoesNotModifyBase(t *testing.T) {
	base := []string{"AWS_PROFILE=prod", "PATH=/bin"}
	_ = Env(base, 1, "t")
	if base[0] != "AWS_PROFILE=prod" || base[1] != "PATH=/bin" {
		t.Errorf("base modified: %v", base)
	}
}
