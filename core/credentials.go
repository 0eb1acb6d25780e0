package core

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// ProtocolVersion selects one of the two identity protocols the agent speaks.
type ProtocolVersion string

const (
	ProtocolV2 ProtocolVersion = "v2"
	ProtocolV3 ProtocolVersion = "v3"
)

// Credentials is the immutable credential tuple used to open a session
// against the private cloud. Build it once and validate at the boundary;
// sessions never mutate it.
type Credentials struct {
	AuthURL          string
	Username         string
	Password         string
	TenantName       string
	UserDomainName   string
	TenantDomainName string
	RegionName       string
	VersionHint      string
}

// Validate fails fast on a blank required field. Domain names and the
// version hint are optional.
func (c Credentials) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"auth_url", c.AuthURL},
		{"username", c.Username},
		{"password", c.Password},
		{"tenant_name", c.TenantName},
		{"region_name", c.RegionName},
	}
	for _, item := range required {
		if strings.TrimSpace(item.value) == "" {
			return NewConfigError(item.field, "credentials: "+item.field+" is required")
		}
	}
	if _, err := url.Parse(strings.TrimSpace(c.AuthURL)); err != nil {
		return NewConfigError("auth_url", "credentials: auth_url is not a valid URL")
	}
	return nil
}

// Protocol resolves the identity protocol for this tuple. A /v3 path suffix
// on the auth URL wins; the version hint only decides when the URL is silent.
func (c Credentials) Protocol() ProtocolVersion {
	path := strings.TrimRight(strings.TrimSpace(c.AuthURL), "/")
	if strings.HasSuffix(path, "/v3") {
		return ProtocolV3
	}
	if strings.HasSuffix(path, "/v2.0") {
		return ProtocolV2
	}
	hint := strings.TrimSpace(strings.ToLower(c.VersionHint))
	if hint == "3" || hint == "v3" {
		return ProtocolV3
	}
	return ProtocolV2
}

// Fingerprint returns a stable hash over the full credential tuple, used as
// the session-cache key. Equal tuples always hash equal; any field change
// produces a new key.
func (c Credentials) Fingerprint() string {
	parts := []string{
		strings.TrimSpace(c.AuthURL),
		strings.TrimSpace(c.Username),
		strings.TrimSpace(c.Password),
		strings.TrimSpace(c.TenantName),
		strings.TrimSpace(c.UserDomainName),
		strings.TrimSpace(c.TenantDomainName),
		strings.TrimSpace(c.RegionName),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
