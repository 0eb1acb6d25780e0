package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-openstack/core"
)

func testTransportConfig() core.TransportConfig {
	return core.TransportConfig{
		RequestTimeout:       15 * time.Second,
		MaxResponseBodyBytes: 1 << 20,
	}
}

func TestBuildRequestFillsTemplateAndHeaders(t *testing.T) {
	desc := core.RequestDescriptor{
		Method:       "GET",
		PathTemplate: "/servers/%s/action/%d",
		PathParams:   []any{"srv-1", 7},
		Query:        map[string]string{"detail": "true"},
	}
	req, err := BuildRequest(desc, "http://nova:8774/v2.1/", "tok-123", testTransportConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.URL != "http://nova:8774/v2.1/servers/srv-1/action/7" {
		t.Fatalf("unexpected url %q", req.URL)
	}
	if req.Headers["X-Auth-Token"] != "tok-123" {
		t.Fatalf("expected token header, got %#v", req.Headers)
	}
	if req.Headers["Accept"] != "application/json" {
		t.Fatalf("expected accept header, got %#v", req.Headers)
	}
	if _, ok := req.Headers["Content-Type"]; ok {
		t.Fatalf("bodyless request must not carry content type")
	}
	if req.Query["detail"] != "true" {
		t.Fatalf("expected query passthrough, got %#v", req.Query)
	}
	if req.Timeout != 15*time.Second {
		t.Fatalf("expected config timeout, got %v", req.Timeout)
	}
}

func TestBuildRequestSerializesBody(t *testing.T) {
	desc := core.RequestDescriptor{
		Method:       "POST",
		PathTemplate: "/servers",
		Body:         map[string]any{"server": map[string]any{"name": "web-1"}},
	}
	req, err := BuildRequest(desc, "http://nova:8774/v2.1", "tok", testTransportConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Headers["Content-Type"] != "application/json" {
		t.Fatalf("expected json content type, got %#v", req.Headers)
	}
	var decoded map[string]map[string]string
	if err := json.Unmarshal(req.Body, &decoded); err != nil {
		t.Fatalf("body must round-trip: %v", err)
	}
	if decoded["server"]["name"] != "web-1" {
		t.Fatalf("unexpected body %s", req.Body)
	}
}

func TestBuildRequestUnauthenticatedOmitsToken(t *testing.T) {
	desc := core.RequestDescriptor{
		Method:          "POST",
		PathTemplate:    "/auth/tokens",
		Unauthenticated: true,
	}
	req, err := BuildRequest(desc, "http://keystone:5000/v3", "stale-token", testTransportConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := req.Headers["X-Auth-Token"]; ok {
		t.Fatalf("authentication call must not carry a token header")
	}
}

func TestBuildRequestRequiresBase(t *testing.T) {
	_, err := BuildRequest(core.RequestDescriptor{PathTemplate: "/x"}, "  ", "tok", testTransportConfig())
	if err == nil {
		t.Fatalf("expected error for blank base url")
	}
	if !core.IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestJoinURL(t *testing.T) {
	cases := []struct {
		base string
		path string
		want string
	}{
		{"http://h:80", "/v2/servers", "http://h:80/v2/servers"},
		{"http://h:80/", "/v2/servers", "http://h:80/v2/servers"},
		{"http://h:80/", "v2/servers", "http://h:80/v2/servers"},
		{"http://h:80/v2", "", "http://h:80/v2"},
	}
	for _, tc := range cases {
		if got := JoinURL(tc.base, tc.path); got != tc.want {
			t.Fatalf("JoinURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

func TestDecodeInto(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if err := DecodeInto([]byte(`{"name":"web-1"}`), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Name != "web-1" {
		t.Fatalf("unexpected decode result %+v", out)
	}

	if err := DecodeInto([]byte(`not json`), &out); err == nil {
		t.Fatalf("expected decoding error")
	} else if !core.IsDecodingError(err) {
		t.Fatalf("expected decoding taxonomy, got %v", err)
	}

	if err := DecodeInto([]byte{}, &out); err == nil {
		t.Fatalf("expected error for empty body with declared shape")
	}

	// Nil out skips decoding entirely.
	if err := DecodeInto([]byte(`garbage`), nil); err != nil {
		t.Fatalf("nil out must skip decoding: %v", err)
	}
}

func TestExtractErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"nested envelope", `{"computeFault":{"message":"Quota exceeded","code":413}}`, "Quota exceeded"},
		{"flat envelope", `{"message": "No such server"}`, "No such server"},
		{"escaped quotes", `{"message":"name \"web\" taken"}`, `name "web" taken`},
		{"no message field", `{"detail":"nope"}`, "Unknown error"},
		{"empty message", `{"message":"   "}`, "Unknown error"},
		{"not json at all", `<html>gateway</html>`, "Unknown error"},
		{"empty body", ``, "Unknown error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractErrorMessage([]byte(tc.body)); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractErrorMessagePicksFirstMatch(t *testing.T) {
	body := `{"a":{"message":"first"},"b":{"message":"second"}}`
	if got := ExtractErrorMessage([]byte(body)); got != "first" {
		t.Fatalf("expected first message, got %q", got)
	}
}
