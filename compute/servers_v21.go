package compute

import (
	"context"
	"net/http"

	"github.com/goliatone/go-openstack/core"
)

// microversionHeader pins requests from the v2.1 generation so the service
// interprets the richer boot payload.
const microversionHeader = "X-OpenStack-Nova-API-Version"

const microversionV21 = "2.1"

// serverServiceV21 speaks the v2.1 generation: the boot payload supports
// key pairs and availability zones, and every call carries the
// microversion header.
type serverServiceV21 struct {
	exec core.Executor
}

func (s *serverServiceV21) List(ctx context.Context) ([]Server, error) {
	return listServers(ctx, s.exec)
}

func (s *serverServiceV21) Get(ctx context.Context, id string) (Server, bool, error) {
	return getServer(ctx, s.exec, id)
}

func (s *serverServiceV21) Delete(ctx context.Context, id string) (bool, error) {
	return deleteServer(ctx, s.exec, id)
}

func (s *serverServiceV21) Boot(ctx context.Context, req BootRequest) (Server, error) {
	payload := map[string]any{
		"name":      req.Name,
		"imageRef":  req.ImageRef,
		"flavorRef": req.FlavorRef,
	}
	if req.KeyName != "" {
		payload["key_name"] = req.KeyName
	}
	if req.AvailabilityZone != "" {
		payload["availability_zone"] = req.AvailabilityZone
	}
	if len(req.NetworkIDs) > 0 {
		networks := make([]map[string]string, 0, len(req.NetworkIDs))
		for _, id := range req.NetworkIDs {
			networks = append(networks, map[string]string{"uuid": id})
		}
		payload["networks"] = networks
	}
	if len(req.Metadata) > 0 {
		payload["metadata"] = req.Metadata
	}

	var resp serverEnvelope
	_, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodPost,
		ServiceType:  core.ServiceTypeCompute,
		PathTemplate: "/servers",
		Body:         map[string]any{"server": payload},
		Headers:      map[string]string{microversionHeader: microversionV21},
		Creation:     true,
	}, &resp)
	if err != nil {
		return Server{}, err
	}
	return resp.Server, nil
}
