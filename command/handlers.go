package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-openstack/compute"
	"github.com/goliatone/go-openstack/core"
	"github.com/goliatone/go-openstack/network"
	"github.com/goliatone/go-openstack/volume"
)

// AgentService is the agent surface the commands dispatch against.
type AgentService interface {
	AuthorizeSession(ctx context.Context, creds core.Credentials) (core.Token, error)
	BootServer(ctx context.Context, creds core.Credentials, req compute.BootRequest) (compute.Server, error)
	CreateNetwork(ctx context.Context, creds core.Credentials, req network.CreateNetworkRequest) (network.Network, error)
	CreateVolume(ctx context.Context, creds core.Credentials, req volume.CreateVolumeRequest) (volume.Volume, error)
}

type AuthorizeSessionCommand struct {
	service AgentService
}

func NewAuthorizeSessionCommand(service AgentService) *AuthorizeSessionCommand {
	return &AuthorizeSessionCommand{service: service}
}

func (c *AuthorizeSessionCommand) Execute(ctx context.Context, msg AuthorizeSessionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: agent service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.AuthorizeSession(ctx, msg.Credentials)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type BootServerCommand struct {
	service AgentService
}

func NewBootServerCommand(service AgentService) *BootServerCommand {
	return &BootServerCommand{service: service}
}

func (c *BootServerCommand) Execute(ctx context.Context, msg BootServerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: agent service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.BootServer(ctx, msg.Credentials, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateNetworkCommand struct {
	service AgentService
}

func NewCreateNetworkCommand(service AgentService) *CreateNetworkCommand {
	return &CreateNetworkCommand{service: service}
}

func (c *CreateNetworkCommand) Execute(ctx context.Context, msg CreateNetworkMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: agent service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.CreateNetwork(ctx, msg.Credentials, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateVolumeCommand struct {
	service AgentService
}

func NewCreateVolumeCommand(service AgentService) *CreateVolumeCommand {
	return &CreateVolumeCommand{service: service}
}

func (c *CreateVolumeCommand) Execute(ctx context.Context, msg CreateVolumeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: agent service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.CreateVolume(ctx, msg.Credentials, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
