package identity

import (
	"strings"

	"github.com/goliatone/go-openstack/core"
)

// TokensPathV2 is the legacy token-issuance path relative to the auth URL.
const TokensPathV2 = "/tokens"

type v2PasswordCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type v2AuthPayload struct {
	PasswordCredentials v2PasswordCredentials `json:"passwordCredentials"`
	TenantName          string                `json:"tenantName"`
}

type v2TokenRequest struct {
	Auth v2AuthPayload `json:"auth"`
}

type v2Token struct {
	ID      string         `json:"id"`
	Expires core.Timestamp `json:"expires"`
	Issued  core.Timestamp `json:"issued_at"`
}

type v2Endpoint struct {
	Region      string `json:"region"`
	PublicURL   string `json:"publicURL"`
	AdminURL    string `json:"adminURL"`
	InternalURL string `json:"internalURL"`
}

type v2CatalogEntry struct {
	Type      string       `json:"type"`
	Name      string       `json:"name"`
	Endpoints []v2Endpoint `json:"endpoints"`
}

type v2Access struct {
	Token          v2Token          `json:"token"`
	ServiceCatalog []v2CatalogEntry `json:"serviceCatalog"`
}

// TokenResponseV2 is the declared shape of the legacy issuance response.
type TokenResponseV2 struct {
	Access v2Access `json:"access"`
}

// BuildTokenRequestV2 builds the legacy issuance descriptor. The token and
// catalog both arrive in the body, so no response headers are captured.
func BuildTokenRequestV2(creds core.Credentials) core.RequestDescriptor {
	return core.RequestDescriptor{
		Method:       "POST",
		BaseURL:      strings.TrimSpace(creds.AuthURL),
		PathTemplate: TokensPathV2,
		Body: v2TokenRequest{
			Auth: v2AuthPayload{
				PasswordCredentials: v2PasswordCredentials{
					Username: creds.Username,
					Password: creds.Password,
				},
				TenantName: creds.TenantName,
			},
		},
		Unauthenticated: true,
	}
}

// GrantFromV2 extracts the issued token and normalized catalog.
func GrantFromV2(resp TokenResponseV2) (core.Token, core.ServiceCatalog, error) {
	if strings.TrimSpace(resp.Access.Token.ID) == "" {
		return core.Token{}, nil, core.NewAuthenticationFailure("identity: v2 response carried no token id", nil)
	}
	token := core.Token{
		ID:        resp.Access.Token.ID,
		ExpiresAt: resp.Access.Token.Expires.Time,
		IssuedAt:  resp.Access.Token.Issued.Time,
	}
	catalog := make(core.ServiceCatalog, 0, len(resp.Access.ServiceCatalog))
	for _, entry := range resp.Access.ServiceCatalog {
		svc := core.Service{Type: entry.Type, Name: entry.Name}
		for _, ep := range entry.Endpoints {
			svc.Endpoints = append(svc.Endpoints, core.Endpoint{
				Region:      ep.Region,
				PublicURL:   ep.PublicURL,
				AdminURL:    ep.AdminURL,
				InternalURL: ep.InternalURL,
			})
		}
		catalog = append(catalog, svc)
	}
	return token, catalog, nil
}
