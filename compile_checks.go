package openstack

import "github.com/goliatone/go-openstack/command"

var _ command.AgentService = (*Agent)(nil)
