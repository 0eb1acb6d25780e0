// Package network exposes typed callers against the network service:
// networks, subnets, and floating IP allocation.
package network

import (
	"context"
	"net/http"

	"github.com/goliatone/go-openstack/core"
)

type NetworkStatus string

const (
	StatusActive  NetworkStatus = "ACTIVE"
	StatusDown    NetworkStatus = "DOWN"
	StatusBuild   NetworkStatus = "BUILD"
	StatusError   NetworkStatus = "ERROR"
	StatusUnknown NetworkStatus = "UNKNOWN"
)

var networkStatusTable = core.NewEnumTable(StatusUnknown, map[string]NetworkStatus{
	"ACTIVE": StatusActive,
	"DOWN":   StatusDown,
	"BUILD":  StatusBuild,
	"ERROR":  StatusError,
})

func (s *NetworkStatus) UnmarshalJSON(data []byte) error {
	return networkStatusTable.DecodeJSON(data, (*NetworkStatus)(s))
}

type Network struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   NetworkStatus `json:"status"`
	TenantID string        `json:"tenant_id"`
	Subnets  []string      `json:"subnets"`
	Shared   bool          `json:"shared"`
}

type Subnet struct {
	ID        string `json:"id"`
	NetworkID string `json:"network_id"`
	Name      string `json:"name"`
	CIDR      string `json:"cidr"`
	IPVersion int    `json:"ip_version"`
	GatewayIP string `json:"gateway_ip"`
}

type FloatingIP struct {
	ID                string `json:"id"`
	FloatingIPAddress string `json:"floating_ip_address"`
	FloatingNetworkID string `json:"floating_network_id"`
	PortID            string `json:"port_id"`
	TenantID          string `json:"tenant_id"`
}

type CreateNetworkRequest struct {
	Name         string
	AdminStateUp bool
	Shared       bool
}

type CreateSubnetRequest struct {
	NetworkID string
	Name      string
	CIDR      string
	IPVersion int
	GatewayIP string
}

type networkEnvelope struct {
	Network Network `json:"network"`
}

type networksEnvelope struct {
	Networks []Network `json:"networks"`
}

type subnetEnvelope struct {
	Subnet Subnet `json:"subnet"`
}

type floatingIPEnvelope struct {
	FloatingIP FloatingIP `json:"floatingip"`
}

type Service struct {
	exec core.Executor
}

func New(exec core.Executor) *Service {
	return &Service{exec: exec}
}

func (s *Service) ListNetworks(ctx context.Context) ([]Network, error) {
	var resp networksEnvelope
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeNetwork,
		PathTemplate: "/v2.0/networks",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return []Network{}, nil
	}
	return resp.Networks, nil
}

func (s *Service) GetNetwork(ctx context.Context, id string) (Network, bool, error) {
	var resp networkEnvelope
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeNetwork,
		PathTemplate: "/v2.0/networks/%s",
		PathParams:   []any{id},
	}, &resp)
	if err != nil {
		return Network{}, false, err
	}
	if !result.Found {
		return Network{}, false, nil
	}
	return resp.Network, true, nil
}

func (s *Service) CreateNetwork(ctx context.Context, req CreateNetworkRequest) (Network, error) {
	var resp networkEnvelope
	_, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodPost,
		ServiceType:  core.ServiceTypeNetwork,
		PathTemplate: "/v2.0/networks",
		Body: map[string]any{"network": map[string]any{
			"name":           req.Name,
			"admin_state_up": req.AdminStateUp,
			"shared":         req.Shared,
		}},
		Creation: true,
	}, &resp)
	if err != nil {
		return Network{}, err
	}
	return resp.Network, nil
}

// DeleteNetwork reports false when the network was already absent.
func (s *Service) DeleteNetwork(ctx context.Context, id string) (bool, error) {
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodDelete,
		ServiceType:  core.ServiceTypeNetwork,
		PathTemplate: "/v2.0/networks/%s",
		PathParams:   []any{id},
	}, nil)
	if err != nil {
		return false, err
	}
	return result.Found, nil
}

func (s *Service) CreateSubnet(ctx context.Context, req CreateSubnetRequest) (Subnet, error) {
	ipVersion := req.IPVersion
	if ipVersion == 0 {
		ipVersion = 4
	}
	payload := map[string]any{
		"network_id": req.NetworkID,
		"name":       req.Name,
		"cidr":       req.CIDR,
		"ip_version": ipVersion,
	}
	if req.GatewayIP != "" {
		payload["gateway_ip"] = req.GatewayIP
	}
	var resp subnetEnvelope
	_, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodPost,
		ServiceType:  core.ServiceTypeNetwork,
		PathTemplate: "/v2.0/subnets",
		Body:         map[string]any{"subnet": payload},
		Creation:     true,
	}, &resp)
	if err != nil {
		return Subnet{}, err
	}
	return resp.Subnet, nil
}

func (s *Service) AllocateFloatingIP(ctx context.Context, floatingNetworkID string) (FloatingIP, error) {
	var resp floatingIPEnvelope
	_, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodPost,
		ServiceType:  core.ServiceTypeNetwork,
		PathTemplate: "/v2.0/floatingips",
		Body: map[string]any{"floatingip": map[string]any{
			"floating_network_id": floatingNetworkID,
		}},
		Creation: true,
	}, &resp)
	if err != nil {
		return FloatingIP{}, err
	}
	return resp.FloatingIP, nil
}

// ReleaseFloatingIP reports false when the allocation was already absent.
func (s *Service) ReleaseFloatingIP(ctx context.Context, id string) (bool, error) {
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodDelete,
		ServiceType:  core.ServiceTypeNetwork,
		PathTemplate: "/v2.0/floatingips/%s",
		PathParams:   []any{id},
	}, nil)
	if err != nil {
		return false, err
	}
	return result.Found, nil
}
