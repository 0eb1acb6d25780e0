// Package session owns the authentication state machine: a Session holds the
// current token, the service catalog, and the per-service endpoint cache, and
// runs every REST call through the execute/retry/error-translation pipeline.
package session

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-openstack/core"
	"github.com/goliatone/go-openstack/identity"
	"github.com/goliatone/go-openstack/transport"
)

// Session is safe for concurrent use. Token and catalog are replaced
// atomically on each successful authorize and never updated piecemeal;
// at most one authorize is in flight per session at any time.
type Session struct {
	id       string
	creds    core.Credentials
	protocol core.ProtocolVersion
	adapter  core.TransportAdapter
	pools    *transport.PoolCache
	observer core.Observer
	config   core.Config

	authMu sync.Mutex

	mu         sync.RWMutex
	token      core.Token
	catalog    core.ServiceCatalog
	region     string
	endpoints  map[string]string
	extractors map[string]EndpointExtractor

	delegates Delegates
}

type Option func(*Session)

func WithAdapter(adapter core.TransportAdapter) Option {
	return func(s *Session) {
		s.adapter = adapter
	}
}

func WithPoolCache(pools *transport.PoolCache) Option {
	return func(s *Session) {
		s.pools = pools
	}
}

func WithObserver(observer core.Observer) Option {
	return func(s *Session) {
		s.observer = observer
	}
}

func WithConfig(cfg core.Config) Option {
	return func(s *Session) {
		s.config = cfg
	}
}

// WithEndpointExtractor installs a per-service-type transform applied when
// the endpoint is first resolved from the catalog.
func WithEndpointExtractor(serviceType string, extractor EndpointExtractor) Option {
	return func(s *Session) {
		if s.extractors == nil {
			s.extractors = map[string]EndpointExtractor{}
		}
		s.extractors[normalizeServiceType(serviceType)] = extractor
	}
}

// New builds an unauthenticated session for a validated credential tuple.
// The first Execute (or an explicit Authorize) obtains the token.
func New(creds core.Credentials, opts ...Option) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		id:        uuid.NewString(),
		creds:     creds,
		protocol:  creds.Protocol(),
		config:    core.DefaultConfig(),
		endpoints: map[string]string{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.adapter == nil {
		s.adapter = transport.NewRESTAdapter(nil)
	}
	return s, nil
}

// ID is the stable session identifier used for connection-pool correlation.
func (s *Session) ID() string {
	return s.id
}

// Credentials returns the immutable credential tuple the session is bound to.
func (s *Session) Credentials() core.Credentials {
	return s.creds
}

// Protocol reports which identity protocol the session speaks.
func (s *Session) Protocol() core.ProtocolVersion {
	return s.protocol
}

// Token returns the current token snapshot.
func (s *Session) Token() core.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Catalog returns the current catalog snapshot.
func (s *Session) Catalog() core.ServiceCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(core.ServiceCatalog(nil), s.catalog...)
}

// Delegates exposes the per-session memoization table for version-specific
// service implementations.
func (s *Session) Delegates() *Delegates {
	return &s.delegates
}

func (s *Session) renewWindow() time.Duration {
	if s.config.TokenRenewWindow > 0 {
		return s.config.TokenRenewWindow
	}
	return core.DefaultConfig().TokenRenewWindow
}

func (s *Session) tokenValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Valid(s.observer.Clock(), s.renewWindow())
}

// EnsureAuthorized refreshes the token when it is missing or expires within
// the renew window. Concurrent callers never issue more than one
// simultaneous authorize; all of them observe the single in-flight result.
func (s *Session) EnsureAuthorized(ctx context.Context) error {
	if s.tokenValid() {
		return nil
	}
	s.authMu.Lock()
	defer s.authMu.Unlock()
	if s.tokenValid() {
		return nil
	}
	return s.authorizeLocked(ctx)
}

// Authorize forces a fresh token and catalog regardless of current state.
func (s *Session) Authorize(ctx context.Context) error {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	return s.authorizeLocked(ctx)
}

// reauthorize refreshes after a 401, unless another caller already replaced
// the rejected token while this one waited on the authorize guard.
func (s *Session) reauthorize(ctx context.Context, staleTokenID string) error {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	s.mu.RLock()
	current := s.token
	s.mu.RUnlock()
	if current.ID != staleTokenID && current.Valid(s.observer.Clock(), s.renewWindow()) {
		return nil
	}
	return s.authorizeLocked(ctx)
}

func (s *Session) authorizeLocked(ctx context.Context) error {
	startedAt := time.Now()

	var token core.Token
	var catalog core.ServiceCatalog
	var err error
	switch s.protocol {
	case core.ProtocolV3:
		token, catalog, err = s.authorizeV3(ctx)
	default:
		token, catalog, err = s.authorizeV2(ctx)
	}
	s.observer.ObserveCall(ctx, startedAt, "authorize", err, map[string]string{
		"protocol": string(s.protocol),
	})
	if err != nil {
		s.observer.LogError(ctx, "authorization failed", map[string]any{
			"session_id": s.id,
			"auth_url":   s.creds.AuthURL,
			"protocol":   s.protocol,
			"error":      err.Error(),
		})
		return err
	}

	s.mu.Lock()
	s.token = token
	s.catalog = catalog
	s.region = s.creds.RegionName
	s.endpoints = map[string]string{}
	s.mu.Unlock()

	s.observer.LogInfo(ctx, "session authorized", map[string]any{
		"session_id": s.id,
		"protocol":   s.protocol,
		"expires_at": token.ExpiresAt,
		"services":   len(catalog),
	})
	return nil
}

func (s *Session) authorizeV2(ctx context.Context) (core.Token, core.ServiceCatalog, error) {
	var resp identity.TokenResponseV2
	if _, err := s.dispatch(ctx, identity.BuildTokenRequestV2(s.creds), &resp); err != nil {
		return core.Token{}, nil, err
	}
	return identity.GrantFromV2(resp)
}

func (s *Session) authorizeV3(ctx context.Context) (core.Token, core.ServiceCatalog, error) {
	var resp identity.TokenResponseV3
	result, err := s.dispatch(ctx, identity.BuildTokenRequestV3(s.creds), &resp)
	if err != nil {
		return core.Token{}, nil, err
	}
	return identity.GrantFromV3(result.Header(identity.HeaderSubjectToken), resp)
}

// Execute runs one described call: ensure a valid token, send, and translate
// the outcome. A single 401 triggers one reauthorization and one retry; a
// second 401 surfaces the authentication failure without looping.
func (s *Session) Execute(ctx context.Context, desc core.RequestDescriptor, out any) (core.Result, error) {
	if !desc.Unauthenticated {
		if err := s.EnsureAuthorized(ctx); err != nil {
			return core.Result{}, err
		}
	}

	result, err := s.dispatch(ctx, desc, out)
	if err == nil || desc.Unauthenticated || core.StatusCode(err) != http.StatusUnauthorized {
		return result, err
	}

	staleToken := s.Token().ID
	if authErr := s.reauthorize(ctx, staleToken); authErr != nil {
		return core.Result{}, authErr
	}
	result, err = s.dispatch(ctx, desc, out)
	if err != nil && core.StatusCode(err) == http.StatusUnauthorized {
		return core.Result{}, core.NewAuthenticationFailure(
			"session: request rejected again after reauthorization",
			map[string]any{"session_id": s.id, "path": desc.PathTemplate},
		)
	}
	return result, err
}

// dispatch performs one attempt: endpoint resolution, request build, wire
// call, and status-ladder translation. It never retries.
func (s *Session) dispatch(ctx context.Context, desc core.RequestDescriptor, out any) (core.Result, error) {
	base := strings.TrimSpace(desc.BaseURL)
	if base == "" {
		resolved, err := s.ResolveEndpoint(ctx, desc.ServiceType)
		if err != nil {
			return core.Result{}, err
		}
		base = resolved
	}
	if strings.TrimSpace(desc.EnforceVersion) != "" {
		base = EnforceVersion(base, desc.EnforceVersion, desc.VersionOnlyIfAbsent)
	}

	req, err := transport.BuildRequest(desc, base, s.Token().ID, s.config.Transport)
	if err != nil {
		return core.Result{}, err
	}

	resp, err := s.adapter.Do(ctx, req)
	if err != nil {
		if core.IsTransportFailure(err) && s.pools != nil {
			s.pools.FlushIdle(ctx, s.creds.AuthURL)
		}
		return core.Result{}, err
	}

	return s.translate(ctx, desc, resp, out)
}

func (s *Session) translate(ctx context.Context, desc core.RequestDescriptor, resp core.TransportResponse, out any) (core.Result, error) {
	result := core.Result{
		Found:      true,
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
	}
	fields := map[string]any{
		"session_id": s.id,
		"method":     desc.Method,
		"path":       desc.PathTemplate,
		"status":     resp.StatusCode,
	}

	switch {
	case resp.StatusCode < http.StatusBadRequest:
		if desc.RawResponse {
			result.Raw = string(resp.Body)
			return result, nil
		}
		if err := transport.DecodeInto(resp.Body, out); err != nil {
			return core.Result{}, err
		}
		return result, nil

	case resp.StatusCode == http.StatusNotFound:
		// Resource absence is an expected control-flow outcome, not a fault.
		s.observer.LogDebug(ctx, "resource not found", fields)
		result.Found = false
		return result, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return core.Result{}, core.NewAuthenticationFailure("session: token rejected", core.CloneFields(fields))

	case resp.StatusCode == http.StatusConflict:
		s.observer.LogDebug(ctx, "resource conflict", fields)
		return core.Result{}, core.NewConflictError(transport.ExtractErrorMessage(resp.Body), core.CloneFields(fields))

	case resp.StatusCode == http.StatusRequestEntityTooLarge && desc.Creation:
		s.observer.LogWarn(ctx, "creation rejected over limit", fields)
		return core.Result{}, core.NewOverLimitError(transport.ExtractErrorMessage(resp.Body), core.CloneFields(fields))

	default:
		message := transport.ExtractErrorMessage(resp.Body)
		fields["message"] = message
		s.observer.LogError(ctx, "service call failed", fields)
		return core.Result{}, core.NewClientError(resp.StatusCode, message, core.CloneFields(fields))
	}
}
