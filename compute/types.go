package compute

import "github.com/goliatone/go-openstack/core"

// ServerStatus is a mapped enum: wire values are the strings the compute
// service declares, resolved through an explicit table so values that are
// not valid identifiers (the resize states carry a space on some
// deployments) still match. Unmatched values decode to StatusUnknown.
type ServerStatus string

const (
	StatusActive       ServerStatus = "ACTIVE"
	StatusBuild        ServerStatus = "BUILD"
	StatusShutoff      ServerStatus = "SHUTOFF"
	StatusError        ServerStatus = "ERROR"
	StatusHardReboot   ServerStatus = "HARD_REBOOT"
	StatusVerifyResize ServerStatus = "VERIFY RESIZE"
	StatusDeleted      ServerStatus = "DELETED"
	StatusUnknown      ServerStatus = "UNKNOWN"
)

var serverStatusTable = core.NewEnumTable(StatusUnknown, map[string]ServerStatus{
	"ACTIVE":        StatusActive,
	"BUILD":         StatusBuild,
	"SHUTOFF":       StatusShutoff,
	"ERROR":         StatusError,
	"HARD_REBOOT":   StatusHardReboot,
	"HARD REBOOT":   StatusHardReboot,
	"VERIFY RESIZE": StatusVerifyResize,
	"VERIFY_RESIZE": StatusVerifyResize,
	"DELETED":       StatusDeleted,
})

func (s *ServerStatus) UnmarshalJSON(data []byte) error {
	return serverStatusTable.DecodeJSON(data, (*ServerStatus)(s))
}

// ResourceRef is the id-only reference shape embedded in server entities.
type ResourceRef struct {
	ID string `json:"id"`
}

type Server struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Status   ServerStatus   `json:"status"`
	TenantID string         `json:"tenant_id"`
	Image    ResourceRef    `json:"image"`
	Flavor   ResourceRef    `json:"flavor"`
	Created  core.Timestamp `json:"created"`
	Updated  core.Timestamp `json:"updated"`
}

type Flavor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	VCPUs int    `json:"vcpus"`
	RAM   int    `json:"ram"`
	Disk  int    `json:"disk"`
}

// BootRequest describes a server to create. The wire payload differs
// between the v2 and v2.1 server services; both build from this shape.
type BootRequest struct {
	Name             string
	ImageRef         string
	FlavorRef        string
	NetworkIDs       []string
	KeyName          string
	AvailabilityZone string
	Metadata         map[string]string
}

type serverEnvelope struct {
	Server Server `json:"server"`
}

type serversEnvelope struct {
	Servers []Server `json:"servers"`
}

type flavorsEnvelope struct {
	Flavors []Flavor `json:"flavors"`
}
