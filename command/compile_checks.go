package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[AuthorizeSessionMessage] = (*AuthorizeSessionCommand)(nil)
	_ gocmd.Commander[BootServerMessage]       = (*BootServerCommand)(nil)
	_ gocmd.Commander[CreateNetworkMessage]    = (*CreateNetworkCommand)(nil)
	_ gocmd.Commander[CreateVolumeMessage]     = (*CreateVolumeCommand)(nil)
)
