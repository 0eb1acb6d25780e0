// Package compute exposes typed callers against the compute service. The
// server operations sit behind a version dispatcher: the wire shape of the
// boot payload differs between the v2 and v2.1 API generations, so the
// matching implementation is selected once per session from the resolved
// endpoint's version segment and memoized for the session's lifetime.
package compute

import (
	"context"
	"net/http"

	"github.com/goliatone/go-openstack/core"
	"github.com/goliatone/go-openstack/session"
)

const delegateKey = "compute.servers"

// ServerService is the stable interface in front of the version-specific
// implementations.
type ServerService interface {
	List(ctx context.Context) ([]Server, error)
	Get(ctx context.Context, id string) (Server, bool, error)
	Boot(ctx context.Context, req BootRequest) (Server, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Sessioner is the session surface the dispatcher needs.
type Sessioner interface {
	core.Executor
	Delegates() *session.Delegates
}

type Service struct {
	sess     Sessioner
	observer core.Observer
}

func New(sess Sessioner, observer core.Observer) *Service {
	return &Service{sess: sess, observer: observer}
}

// Servers resolves the version-matched server service for this session,
// constructing it exactly once even under concurrent first use.
func (s *Service) Servers(ctx context.Context) (ServerService, error) {
	return session.Resolve(s.sess.Delegates(), delegateKey, func() (ServerService, error) {
		endpoint, err := s.sess.ResolveEndpoint(ctx, core.ServiceTypeCompute)
		if err != nil {
			return nil, err
		}
		discriminant := session.VersionSegmentOf(endpoint)
		s.observer.LogDebug(ctx, "selected server service generation", map[string]any{
			"endpoint": endpoint,
			"version":  discriminant,
		})
		if discriminant == "v2.1" {
			return &serverServiceV21{exec: s.sess}, nil
		}
		return &serverServiceV2{exec: s.sess}, nil
	})
}

// ListFlavors is version-independent and bypasses the dispatcher.
func (s *Service) ListFlavors(ctx context.Context) ([]Flavor, error) {
	var resp flavorsEnvelope
	result, err := s.sess.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeCompute,
		PathTemplate: "/flavors/detail",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return []Flavor{}, nil
	}
	return resp.Flavors, nil
}

// listServers is the listing shared by both generations.
func listServers(ctx context.Context, exec core.Executor) ([]Server, error) {
	var resp serversEnvelope
	result, err := exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeCompute,
		PathTemplate: "/servers/detail",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return []Server{}, nil
	}
	return resp.Servers, nil
}

func getServer(ctx context.Context, exec core.Executor, id string) (Server, bool, error) {
	var resp serverEnvelope
	result, err := exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeCompute,
		PathTemplate: "/servers/%s",
		PathParams:   []any{id},
	}, &resp)
	if err != nil {
		return Server{}, false, err
	}
	if !result.Found {
		return Server{}, false, nil
	}
	return resp.Server, true, nil
}

// deleteServer treats 404 as already absent.
func deleteServer(ctx context.Context, exec core.Executor, id string) (bool, error) {
	result, err := exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodDelete,
		ServiceType:  core.ServiceTypeCompute,
		PathTemplate: "/servers/%s",
		PathParams:   []any{id},
	}, nil)
	if err != nil {
		return false, err
	}
	return result.Found, nil
}
