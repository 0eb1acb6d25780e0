// Package command exposes the agent's compound operations as dispatchable
// command messages with typed result collection.
package command

import (
	"strings"

	"github.com/goliatone/go-openstack/compute"
	"github.com/goliatone/go-openstack/core"
	"github.com/goliatone/go-openstack/network"
	"github.com/goliatone/go-openstack/volume"
)

// AuthorizeSessionMessage forces authentication for a credential tuple.
type AuthorizeSessionMessage struct {
	Credentials core.Credentials `json:"credentials"`
}

func (m AuthorizeSessionMessage) Type() string {
	return "openstack.command.session.authorize"
}

func (m AuthorizeSessionMessage) Validate() error {
	return m.Credentials.Validate()
}

// BootServerMessage provisions a server for the credential tuple's tenant.
type BootServerMessage struct {
	Credentials core.Credentials    `json:"credentials"`
	Request     compute.BootRequest `json:"request"`
}

func (m BootServerMessage) Type() string {
	return "openstack.command.server.boot"
}

func (m BootServerMessage) Validate() error {
	if err := m.Credentials.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Name) == "" {
		return core.NewConfigError("request.name", "command: server name is required")
	}
	if strings.TrimSpace(m.Request.ImageRef) == "" {
		return core.NewConfigError("request.image_ref", "command: image ref is required")
	}
	if strings.TrimSpace(m.Request.FlavorRef) == "" {
		return core.NewConfigError("request.flavor_ref", "command: flavor ref is required")
	}
	return nil
}

// CreateNetworkMessage provisions a network.
type CreateNetworkMessage struct {
	Credentials core.Credentials             `json:"credentials"`
	Request     network.CreateNetworkRequest `json:"request"`
}

func (m CreateNetworkMessage) Type() string {
	return "openstack.command.network.create"
}

func (m CreateNetworkMessage) Validate() error {
	if err := m.Credentials.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Name) == "" {
		return core.NewConfigError("request.name", "command: network name is required")
	}
	return nil
}

// CreateVolumeMessage provisions a block storage volume.
type CreateVolumeMessage struct {
	Credentials core.Credentials           `json:"credentials"`
	Request     volume.CreateVolumeRequest `json:"request"`
}

func (m CreateVolumeMessage) Type() string {
	return "openstack.command.volume.create"
}

func (m CreateVolumeMessage) Validate() error {
	if err := m.Credentials.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Name) == "" {
		return core.NewConfigError("request.name", "command: volume name is required")
	}
	if m.Request.Size <= 0 {
		return core.NewConfigError("request.size", "command: volume size must be positive")
	}
	return nil
}
