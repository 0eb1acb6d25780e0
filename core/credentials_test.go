package core

import (
	"strings"
	"testing"
)

func validCredentials() Credentials {
	return Credentials{
		AuthURL:    "http://keystone.local:5000/v3",
		Username:   "svc-agent",
		Password:   "secret",
		TenantName: "ops",
		RegionName: "RegionOne",
	}
}

func TestCredentialsValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Credentials)
		field  string
	}{
		{"missing auth url", func(c *Credentials) { c.AuthURL = " " }, "auth_url"},
		{"missing username", func(c *Credentials) { c.Username = "" }, "username"},
		{"missing password", func(c *Credentials) { c.Password = "" }, "password"},
		{"missing tenant", func(c *Credentials) { c.TenantName = "" }, "tenant_name"},
		{"missing region", func(c *Credentials) { c.RegionName = "" }, "region_name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			creds := validCredentials()
			tc.mutate(&creds)
			err := creds.Validate()
			if err == nil {
				t.Fatalf("expected validation failure")
			}
			if !IsConfigError(err) {
				t.Fatalf("expected config error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected error to name %q, got %v", tc.field, err)
			}
		})
	}

	if err := validCredentials().Validate(); err != nil {
		t.Fatalf("expected valid credentials, got %v", err)
	}
}

func TestCredentialsValidateOptionalFields(t *testing.T) {
	creds := validCredentials()
	creds.UserDomainName = ""
	creds.TenantDomainName = ""
	creds.VersionHint = ""
	if err := creds.Validate(); err != nil {
		t.Fatalf("domain names and version hint are optional: %v", err)
	}
}

func TestCredentialsProtocol(t *testing.T) {
	cases := []struct {
		name    string
		authURL string
		hint    string
		want    ProtocolVersion
	}{
		{"v3 path suffix", "http://keystone:5000/v3", "", ProtocolV3},
		{"v3 path with trailing slash", "http://keystone:5000/v3/", "", ProtocolV3},
		{"v2 path suffix", "http://keystone:5000/v2.0", "", ProtocolV2},
		{"bare url defaults to v2", "http://keystone:5000", "", ProtocolV2},
		{"hint selects v3", "http://keystone:5000", "3", ProtocolV3},
		{"hint selects v3 with prefix", "http://keystone:5000", "v3", ProtocolV3},
		{"path wins over hint", "http://keystone:5000/v2.0", "3", ProtocolV2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			creds := validCredentials()
			creds.AuthURL = tc.authURL
			creds.VersionHint = tc.hint
			if got := creds.Protocol(); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCredentialsFingerprint(t *testing.T) {
	a := validCredentials()
	b := validCredentials()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal tuples must hash equal")
	}

	b.Password = "other"
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("password change must produce a new fingerprint")
	}

	c := validCredentials()
	c.RegionName = "RegionTwo"
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("region change must produce a new fingerprint")
	}
}
