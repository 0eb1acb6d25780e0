package core

import (
	"strings"
	"time"
)

// Well-known service types advertised by the identity catalog.
const (
	ServiceTypeIdentity  = "identity"
	ServiceTypeCompute   = "compute"
	ServiceTypeNetwork   = "network"
	ServiceTypeImage     = "image"
	ServiceTypeVolume    = "volumev3"
	ServiceTypeTelemetry = "metering"
)

// Token is an opaque credential issued by the identity service.
type Token struct {
	ID        string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Valid reports whether the token exists and does not expire within the
// lookahead window measured from now.
func (t Token) Valid(now time.Time, lookahead time.Duration) bool {
	if strings.TrimSpace(t.ID) == "" {
		return false
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return t.ExpiresAt.After(now.Add(lookahead))
}

// Endpoint holds the published URL variants for one backend service.
type Endpoint struct {
	Region      string
	PublicURL   string
	AdminURL    string
	InternalURL string
}

// PreferredURL returns the public URL, falling back to internal then admin.
func (e Endpoint) PreferredURL() string {
	for _, candidate := range []string{e.PublicURL, e.InternalURL, e.AdminURL} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

// Service is one catalog entry: a service type plus its endpoints.
type Service struct {
	Type      string
	Name      string
	Endpoints []Endpoint
}

// ServiceCatalog is the full list of services returned on authorization.
type ServiceCatalog []Service

// FirstByType returns the first service whose type matches, scanning in
// catalog order. The second return is false when no service matches.
func (c ServiceCatalog) FirstByType(serviceType string) (Service, bool) {
	serviceType = strings.TrimSpace(strings.ToLower(serviceType))
	for _, svc := range c {
		if strings.TrimSpace(strings.ToLower(svc.Type)) == serviceType {
			return svc, true
		}
	}
	return Service{}, false
}

// FirstEndpoint returns the first endpoint for a region, or the first
// endpoint overall when region is blank or has no match.
func (s Service) FirstEndpoint(region string) (Endpoint, bool) {
	if len(s.Endpoints) == 0 {
		return Endpoint{}, false
	}
	region = strings.TrimSpace(region)
	if region != "" {
		for _, ep := range s.Endpoints {
			if strings.EqualFold(strings.TrimSpace(ep.Region), region) {
				return ep, true
			}
		}
	}
	return s.Endpoints[0], true
}
