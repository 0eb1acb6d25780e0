package transport

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-openstack/core"
)

const (
	headerAuthToken   = "X-Auth-Token"
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
)

// BuildRequest turns a descriptor into a transport request rooted at base.
// The bearer token header is attached unless the call is the authentication
// call itself.
func BuildRequest(desc core.RequestDescriptor, base string, token string, defaults core.TransportConfig) (core.TransportRequest, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return core.TransportRequest{}, badRequestError(nil, "transport: endpoint base url is required", nil)
	}

	path := desc.PathTemplate
	if len(desc.PathParams) > 0 {
		path = fmt.Sprintf(desc.PathTemplate, desc.PathParams...)
	}

	var body []byte
	if desc.Body != nil {
		encoded, err := json.Marshal(desc.Body)
		if err != nil {
			return core.TransportRequest{}, badRequestError(err, "transport: serialize request body", map[string]any{
				"path": desc.PathTemplate,
			})
		}
		body = encoded
	}

	headers := map[string]string{
		headerAccept: contentTypeJSON,
	}
	if len(body) > 0 {
		headers[headerContentType] = contentTypeJSON
	}
	if !desc.Unauthenticated && strings.TrimSpace(token) != "" {
		headers[headerAuthToken] = strings.TrimSpace(token)
	}
	for key, value := range desc.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		headers[key] = value
	}

	query := map[string]string{}
	for key, value := range desc.Query {
		if strings.TrimSpace(key) == "" {
			continue
		}
		query[key] = value
	}

	return core.TransportRequest{
		Method:               desc.Method,
		URL:                  JoinURL(base, path),
		Headers:              headers,
		Query:                query,
		Body:                 body,
		Timeout:              defaults.RequestTimeout,
		MaxResponseBodyBytes: defaults.MaxResponseBodyBytes,
	}, nil
}

// JoinURL concatenates a base URL and a logical path without duplicating
// separators.
func JoinURL(base string, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// DecodeInto parses a JSON response body into the declared shape. A nil out
// skips decoding entirely.
func DecodeInto(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(body) == 0 {
		return core.NewDecodingError(nil, "transport: empty body for declared response shape", nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return core.NewDecodingError(err, "transport: response body does not match declared shape", map[string]any{
			"body_bytes": len(body),
		})
	}
	return nil
}

// messagePattern is the best-effort scan for a "message" field in error
// bodies whose envelope shape varies by service.
var messagePattern = regexp.MustCompile(`"message"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// ExtractErrorMessage pulls the first message field out of an error body,
// defaulting to "Unknown error" when absent or unparsable.
func ExtractErrorMessage(body []byte) string {
	match := messagePattern.FindSubmatch(body)
	if len(match) < 2 {
		return "Unknown error"
	}
	var unescaped string
	if err := json.Unmarshal([]byte(`"`+string(match[1])+`"`), &unescaped); err != nil {
		return "Unknown error"
	}
	unescaped = strings.TrimSpace(unescaped)
	if unescaped == "" {
		return "Unknown error"
	}
	return unescaped
}
