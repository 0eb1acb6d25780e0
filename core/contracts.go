package core

import (
	"context"
	"net/textproto"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// MetricsRecorder receives operational counters and latency histograms.
type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// RequestDescriptor is the flat, serializable description of one REST call.
// Service callers build a descriptor and hand it to the session's Execute.
type RequestDescriptor struct {
	// Method is the HTTP verb; blank defaults to GET.
	Method string
	// ServiceType selects the catalog entry whose endpoint hosts the call.
	// Ignored when BaseURL is set.
	ServiceType string
	// BaseURL overrides endpoint resolution, used by authentication calls.
	BaseURL string
	// PathTemplate is a fmt-style template appended to the endpoint base.
	PathTemplate string
	// PathParams fill the template positionally.
	PathParams []any
	// Body is JSON-serialized when non-nil.
	Body any
	// Headers and Query are merged into the transport request.
	Headers map[string]string
	Query   map[string]string
	// CaptureHeaders lists response headers the caller needs back even on a
	// decoded-entity result (a v3 token arrives only in a header).
	CaptureHeaders []string
	// Unauthenticated marks the authentication call itself: no token header
	// is attached and no ensure-authorized pass runs before it.
	Unauthenticated bool
	// Creation marks resource-creation calls so an HTTP 413 maps to the
	// over-limit error instead of a generic client error.
	Creation bool
	// RawResponse returns the body unprocessed instead of decoding JSON.
	RawResponse bool
	// EnforceVersion pins the resolved endpoint to an API generation, e.g.
	// "v2". VersionOnlyIfAbsent keeps an already-versioned URL untouched.
	EnforceVersion      string
	VersionOnlyIfAbsent bool
}

// Result is the non-error outcome of an executed call. A 404 yields
// Found=false with no error; that is the standard "resource absent" signal.
type Result struct {
	Found      bool
	StatusCode int
	Headers    map[string]string
	Raw        string
}

// Header returns a response header by name, tolerating non-canonical casing.
func (r Result) Header(name string) string {
	if len(r.Headers) == 0 {
		return ""
	}
	if v, ok := r.Headers[name]; ok {
		return v
	}
	return r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// Executor is the surface service callers consume: typed execution plus
// endpoint resolution. Sessions implement it.
type Executor interface {
	Execute(ctx context.Context, desc RequestDescriptor, out any) (Result, error)
	ResolveEndpoint(ctx context.Context, serviceType string) (string, error)
}

// TransportRequest is the fully built wire request handed to an adapter.
type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

// TransportResponse is the raw wire response before taxonomy mapping.
type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// TransportAdapter executes a built request over one protocol.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}
