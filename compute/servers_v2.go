package compute

import (
	"context"
	"net/http"

	"github.com/goliatone/go-openstack/core"
)

// serverServiceV2 speaks the legacy v2 generation: flat boot payload with
// uuid-only network references and no key-pair support.
type serverServiceV2 struct {
	exec core.Executor
}

func (s *serverServiceV2) List(ctx context.Context) ([]Server, error) {
	return listServers(ctx, s.exec)
}

func (s *serverServiceV2) Get(ctx context.Context, id string) (Server, bool, error) {
	return getServer(ctx, s.exec, id)
}

func (s *serverServiceV2) Delete(ctx context.Context, id string) (bool, error) {
	return deleteServer(ctx, s.exec, id)
}

func (s *serverServiceV2) Boot(ctx context.Context, req BootRequest) (Server, error) {
	payload := map[string]any{
		"name":      req.Name,
		"imageRef":  req.ImageRef,
		"flavorRef": req.FlavorRef,
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
		Creation:     true,
	}, &resp)
	if err != nil {
		return Server{}, err
	}
	return resp.Server, nil
}
