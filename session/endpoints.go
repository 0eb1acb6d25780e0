package session

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/goliatone/go-openstack/core"
)

// EndpointExtractor adjusts the URL resolved from a catalog endpoint before
// it is cached. The current preferred URL is passed alongside the full
// endpoint so extractors can branch on what would otherwise be used.
type EndpointExtractor func(endpoint core.Endpoint, current string) string

// PreferAdminForLegacy returns an extractor that switches to the admin URL
// only when the resolved path starts with the given legacy version segment.
func PreferAdminForLegacy(legacySegment string) EndpointExtractor {
	legacySegment = strings.Trim(strings.TrimSpace(legacySegment), "/")
	return func(endpoint core.Endpoint, current string) string {
		if legacySegment == "" || strings.TrimSpace(endpoint.AdminURL) == "" {
			return current
		}
		parsed, err := url.Parse(current)
		if err != nil {
			return current
		}
		first := firstPathSegment(parsed.Path)
		if strings.EqualFold(first, legacySegment) {
			return strings.TrimSpace(endpoint.AdminURL)
		}
		return current
	}
}

// ResolveEndpoint maps a logical service type to a resolved URL, consulting
// the per-session cache first. A miss scans the catalog for the first
// matching service; when nothing matches, the session's auth URL is the
// fallback. Results stay cached until the next authorize invalidates them.
func (s *Session) ResolveEndpoint(ctx context.Context, serviceType string) (string, error) {
	serviceType = normalizeServiceType(serviceType)
	if serviceType == "" {
		return "", core.NewInternalError("session: service type is required for endpoint resolution")
	}

	s.mu.RLock()
	cached, ok := s.endpoints[serviceType]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	// The catalog only exists after a successful authorize.
	if err := s.EnsureAuthorized(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.endpoints[serviceType]; ok {
		return cached, nil
	}

	resolved := strings.TrimSpace(s.creds.AuthURL)
	svc, found := s.catalog.FirstByType(serviceType)
	if found {
		if endpoint, ok := svc.FirstEndpoint(s.region); ok {
			resolved = endpoint.PreferredURL()
			if extractor, ok := s.extractors[serviceType]; ok && extractor != nil {
				resolved = extractor(endpoint, resolved)
			}
		}
	} else {
		s.observer.LogDebug(ctx, "service missing from catalog, using auth url", map[string]any{
			"session_id":   s.id,
			"service_type": serviceType,
		})
	}

	s.endpoints[serviceType] = resolved
	return resolved, nil
}

var versionSegmentPattern = regexp.MustCompile(`^v\d+(\.\d+)?$`)

// EnforceVersion rewrites a service URL to carry the required API version
// segment, stripping any existing /vN[.M] segment first. With onlyIfAbsent
// set, an already-versioned URL is returned unchanged.
func EnforceVersion(rawURL string, version string, onlyIfAbsent bool) string {
	version = strings.Trim(strings.TrimSpace(version), "/")
	if version == "" {
		return rawURL
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	segments := splitPath(parsed.Path)
	if len(segments) > 0 && versionSegmentPattern.MatchString(segments[0]) {
		if onlyIfAbsent {
			return rawURL
		}
		segments[0] = version
	} else {
		segments = append([]string{version}, segments...)
	}
	parsed.Path = "/" + strings.Join(segments, "/")
	return strings.TrimRight(parsed.String(), "/")
}

// VersionSegmentOf extracts the API version segment from a resolved endpoint
// URL, e.g. "v2.1" from http://nova:8774/v2.1. Empty when none is present.
func VersionSegmentOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	for _, segment := range splitPath(parsed.Path) {
		if versionSegmentPattern.MatchString(segment) {
			return segment
		}
	}
	return ""
}

func splitPath(path string) []string {
	segments := []string{}
	for _, segment := range strings.Split(path, "/") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

func firstPathSegment(path string) string {
	segments := splitPath(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

func normalizeServiceType(serviceType string) string {
	return strings.TrimSpace(strings.ToLower(serviceType))
}
