package identity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-openstack/core"
)

func testCredentials() core.Credentials {
	return core.Credentials{
		AuthURL:          "http://keystone:5000/v3",
		Username:         "svc-agent",
		Password:         "secret",
		TenantName:       "ops",
		UserDomainName:   "Default",
		TenantDomainName: "Default",
		RegionName:       "RegionOne",
	}
}

func TestBuildTokenRequestV2(t *testing.T) {
	creds := testCredentials()
	creds.AuthURL = "http://keystone:5000/v2.0"
	desc := BuildTokenRequestV2(creds)

	if !desc.Unauthenticated {
		t.Fatalf("issuance call must be unauthenticated")
	}
	if desc.BaseURL != creds.AuthURL {
		t.Fatalf("expected auth url base, got %q", desc.BaseURL)
	}
	if desc.PathTemplate != TokensPathV2 {
		t.Fatalf("expected %q, got %q", TokensPathV2, desc.PathTemplate)
	}

	encoded, err := json.Marshal(desc.Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	var payload struct {
		Auth struct {
			PasswordCredentials struct {
				Username string `json:"username"`
				Password string `json:"password"`
			} `json:"passwordCredentials"`
			TenantName string `json:"tenantName"`
		} `json:"auth"`
	}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if payload.Auth.PasswordCredentials.Username != "svc-agent" || payload.Auth.TenantName != "ops" {
		t.Fatalf("unexpected payload %s", encoded)
	}
}

func TestGrantFromV2(t *testing.T) {
	raw := `{
		"access": {
			"token": {"id": "tok-v2", "expires": "2026-01-10T13:00:00Z", "issued_at": "2026-01-10T12:00:00Z"},
			"serviceCatalog": [
				{
					"type": "compute",
					"name": "nova",
					"endpoints": [
						{"region": "RegionOne", "publicURL": "http://nova:8774/v2", "adminURL": "http://nova-adm:8774/v2", "internalURL": "http://nova-int:8774/v2"}
					]
				}
			]
		}
	}`
	var resp TokenResponseV2
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	token, catalog, err := GrantFromV2(resp)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if token.ID != "tok-v2" {
		t.Fatalf("unexpected token id %q", token.ID)
	}
	if want := time.Date(2026, 1, 10, 13, 0, 0, 0, time.UTC); !token.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, token.ExpiresAt)
	}

	svc, ok := catalog.FirstByType("compute")
	if !ok {
		t.Fatalf("expected compute catalog entry")
	}
	ep, ok := svc.FirstEndpoint("RegionOne")
	if !ok {
		t.Fatalf("expected RegionOne endpoint")
	}
	if ep.PublicURL != "http://nova:8774/v2" || ep.AdminURL != "http://nova-adm:8774/v2" {
		t.Fatalf("unexpected endpoint %+v", ep)
	}
}

func TestGrantFromV2RequiresToken(t *testing.T) {
	if _, _, err := GrantFromV2(TokenResponseV2{}); err == nil {
		t.Fatalf("expected error for missing token id")
	} else if !core.IsAuthenticationFailure(err) {
		t.Fatalf("expected auth taxonomy, got %v", err)
	}
}

func TestBuildTokenRequestV3(t *testing.T) {
	desc := BuildTokenRequestV3(testCredentials())

	if !desc.Unauthenticated {
		t.Fatalf("issuance call must be unauthenticated")
	}
	if desc.PathTemplate != AuthTokensPathV3 {
		t.Fatalf("expected %q, got %q", AuthTokensPathV3, desc.PathTemplate)
	}
	if len(desc.CaptureHeaders) != 1 || desc.CaptureHeaders[0] != HeaderSubjectToken {
		t.Fatalf("expected subject token header capture, got %v", desc.CaptureHeaders)
	}

	encoded, err := json.Marshal(desc.Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	var payload struct {
		Auth struct {
			Identity struct {
				Methods  []string `json:"methods"`
				Password struct {
					User struct {
						Name   string `json:"name"`
						Domain *struct {
							Name string `json:"name"`
						} `json:"domain"`
					} `json:"user"`
				} `json:"password"`
			} `json:"identity"`
			Scope struct {
				Project struct {
					Name   string `json:"name"`
					Domain *struct {
						Name string `json:"name"`
					} `json:"domain"`
				} `json:"project"`
			} `json:"scope"`
		} `json:"auth"`
	}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(payload.Auth.Identity.Methods) != 1 || payload.Auth.Identity.Methods[0] != "password" {
		t.Fatalf("expected password method, got %v", payload.Auth.Identity.Methods)
	}
	if payload.Auth.Identity.Password.User.Domain == nil || payload.Auth.Identity.Password.User.Domain.Name != "Default" {
		t.Fatalf("expected user domain in payload: %s", encoded)
	}
	if payload.Auth.Scope.Project.Name != "ops" {
		t.Fatalf("expected project scope, got %s", encoded)
	}
}

func TestBuildTokenRequestV3OmitsBlankDomains(t *testing.T) {
	creds := testCredentials()
	creds.UserDomainName = ""
	creds.TenantDomainName = " "
	desc := BuildTokenRequestV3(creds)

	encoded, err := json.Marshal(desc.Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	if string(encoded) == "" {
		t.Fatalf("expected body")
	}
	var generic map[string]any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	auth := generic["auth"].(map[string]any)
	user := auth["identity"].(map[string]any)["password"].(map[string]any)["user"].(map[string]any)
	if _, ok := user["domain"]; ok {
		t.Fatalf("blank user domain must be omitted: %s", encoded)
	}
	project := auth["scope"].(map[string]any)["project"].(map[string]any)
	if _, ok := project["domain"]; ok {
		t.Fatalf("blank project domain must be omitted: %s", encoded)
	}
}

func TestGrantFromV3MergesEndpointsByRegion(t *testing.T) {
	raw := `{
		"token": {
			"expires_at": "2026-01-10T13:00:00Z",
			"issued_at": "2026-01-10T12:00:00Z",
			"catalog": [
				{
					"type": "compute",
					"name": "nova",
					"endpoints": [
						{"interface": "public", "region": "RegionOne", "url": "http://nova:8774/v2.1"},
						{"interface": "admin", "region": "RegionOne", "url": "http://nova-adm:8774/v2.1"},
						{"interface": "internal", "region": "RegionOne", "url": "http://nova-int:8774/v2.1"},
						{"interface": "public", "region": "RegionTwo", "url": "http://nova2:8774/v2.1"}
					]
				}
			]
		}
	}`
	var resp TokenResponseV3
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	token, catalog, err := GrantFromV3("  subject-tok  ", resp)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if token.ID != "subject-tok" {
		t.Fatalf("expected trimmed subject token, got %q", token.ID)
	}

	svc, ok := catalog.FirstByType("compute")
	if !ok {
		t.Fatalf("expected compute entry")
	}
	if len(svc.Endpoints) != 2 {
		t.Fatalf("expected per-region merge into two endpoints, got %d", len(svc.Endpoints))
	}
	one, ok := svc.FirstEndpoint("RegionOne")
	if !ok {
		t.Fatalf("expected RegionOne endpoint")
	}
	if one.PublicURL != "http://nova:8774/v2.1" || one.AdminURL != "http://nova-adm:8774/v2.1" || one.InternalURL != "http://nova-int:8774/v2.1" {
		t.Fatalf("interfaces not merged: %+v", one)
	}
	two, ok := svc.FirstEndpoint("RegionTwo")
	if !ok || two.PublicURL != "http://nova2:8774/v2.1" {
		t.Fatalf("unexpected RegionTwo endpoint %+v", two)
	}
}

func TestGrantFromV3RequiresSubjectToken(t *testing.T) {
	if _, _, err := GrantFromV3("   ", TokenResponseV3{}); err == nil {
		t.Fatalf("expected error for missing subject token")
	} else if !core.IsAuthenticationFailure(err) {
		t.Fatalf("expected auth taxonomy, got %v", err)
	}
}
