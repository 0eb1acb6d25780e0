package identity

import (
	"strings"

	"github.com/goliatone/go-openstack/core"
)

// AuthTokensPathV3 is the v3 token-issuance path relative to the auth URL.
const AuthTokensPathV3 = "/auth/tokens"

// HeaderSubjectToken carries the issued v3 token; it never appears in the
// response body.
const HeaderSubjectToken = "X-Subject-Token"

type v3Domain struct {
	Name string `json:"name,omitempty"`
}

type v3User struct {
	Name     string    `json:"name"`
	Password string    `json:"password"`
	Domain   *v3Domain `json:"domain,omitempty"`
}

type v3PasswordMethod struct {
	User v3User `json:"user"`
}

type v3Identity struct {
	Methods  []string         `json:"methods"`
	Password v3PasswordMethod `json:"password"`
}

type v3Project struct {
	Name   string    `json:"name"`
	Domain *v3Domain `json:"domain,omitempty"`
}

type v3Scope struct {
	Project v3Project `json:"project"`
}

type v3Auth struct {
	Identity v3Identity `json:"identity"`
	Scope    *v3Scope   `json:"scope,omitempty"`
}

type v3TokenRequest struct {
	Auth v3Auth `json:"auth"`
}

type v3CatalogEndpoint struct {
	Interface string `json:"interface"`
	Region    string `json:"region"`
	URL       string `json:"url"`
}

type v3CatalogEntry struct {
	Type      string              `json:"type"`
	Name      string              `json:"name"`
	Endpoints []v3CatalogEndpoint `json:"endpoints"`
}

type v3Token struct {
	ExpiresAt core.Timestamp   `json:"expires_at"`
	IssuedAt  core.Timestamp   `json:"issued_at"`
	Catalog   []v3CatalogEntry `json:"catalog"`
}

// TokenResponseV3 is the declared body shape of the v3 issuance response.
// The token value itself is read from the X-Subject-Token header.
type TokenResponseV3 struct {
	Token v3Token `json:"token"`
}

// BuildTokenRequestV3 builds the v3 issuance descriptor, declaring the
// subject-token header for capture.
func BuildTokenRequestV3(creds core.Credentials) core.RequestDescriptor {
	user := v3User{
		Name:     creds.Username,
		Password: creds.Password,
	}
	if strings.TrimSpace(creds.UserDomainName) != "" {
		user.Domain = &v3Domain{Name: creds.UserDomainName}
	}
	project := v3Project{Name: creds.TenantName}
	if strings.TrimSpace(creds.TenantDomainName) != "" {
		project.Domain = &v3Domain{Name: creds.TenantDomainName}
	}
	return core.RequestDescriptor{
		Method:       "POST",
		BaseURL:      strings.TrimSpace(creds.AuthURL),
		PathTemplate: AuthTokensPathV3,
		Body: v3TokenRequest{
			Auth: v3Auth{
				Identity: v3Identity{
					Methods:  []string{"password"},
					Password: v3PasswordMethod{User: user},
				},
				Scope: &v3Scope{Project: project},
			},
		},
		CaptureHeaders:  []string{HeaderSubjectToken},
		Unauthenticated: true,
	}
}

// GrantFromV3 combines the captured subject-token header with the body's
// expiry and catalog.
func GrantFromV3(subjectToken string, resp TokenResponseV3) (core.Token, core.ServiceCatalog, error) {
	subjectToken = strings.TrimSpace(subjectToken)
	if subjectToken == "" {
		return core.Token{}, nil, core.NewAuthenticationFailure("identity: v3 response carried no subject token header", nil)
	}
	token := core.Token{
		ID:        subjectToken,
		ExpiresAt: resp.Token.ExpiresAt.Time,
		IssuedAt:  resp.Token.IssuedAt.Time,
	}
	catalog := make(core.ServiceCatalog, 0, len(resp.Token.Catalog))
	for _, entry := range resp.Token.Catalog {
		svc := core.Service{Type: entry.Type, Name: entry.Name}
		byRegion := map[string]*core.Endpoint{}
		order := []string{}
		for _, ep := range entry.Endpoints {
			region := strings.TrimSpace(ep.Region)
			slot, ok := byRegion[region]
			if !ok {
				slot = &core.Endpoint{Region: region}
				byRegion[region] = slot
				order = append(order, region)
			}
			switch strings.TrimSpace(strings.ToLower(ep.Interface)) {
			case "admin":
				slot.AdminURL = ep.URL
			case "internal":
				slot.InternalURL = ep.URL
			default:
				slot.PublicURL = ep.URL
			}
		}
		for _, region := range order {
			svc.Endpoints = append(svc.Endpoints, *byRegion[region])
		}
		catalog = append(catalog, svc)
	}
	return token, catalog, nil
}
