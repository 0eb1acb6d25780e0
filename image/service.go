// Package image exposes typed callers against the image service. The image
// family is pinned to the v2 API generation regardless of what the catalog
// advertises, via the version-enforcement transform on every descriptor.
package image

import (
	"context"
	"net/http"

	"github.com/goliatone/go-openstack/core"
)

// pinnedVersion overrides whatever version segment the catalog endpoint
// carries; some deployments still advertise the retired v1 path.
const pinnedVersion = "v2"

type ImageStatus string

const (
	StatusQueued        ImageStatus = "queued"
	StatusSaving        ImageStatus = "saving"
	StatusActive        ImageStatus = "active"
	StatusDeactivated   ImageStatus = "deactivated"
	StatusKilled        ImageStatus = "killed"
	StatusPendingDelete ImageStatus = "pending_delete"
	StatusUnknown       ImageStatus = "unknown"
)

var imageStatusTable = core.NewEnumTable(StatusUnknown, map[string]ImageStatus{
	"queued":         StatusQueued,
	"saving":         StatusSaving,
	"active":         StatusActive,
	"deactivated":    StatusDeactivated,
	"killed":         StatusKilled,
	"pending_delete": StatusPendingDelete,
})

func (s *ImageStatus) UnmarshalJSON(data []byte) error {
	return imageStatusTable.DecodeJSON(data, (*ImageStatus)(s))
}

type Image struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    ImageStatus    `json:"status"`
	Size      int64          `json:"size"`
	MinDisk   int            `json:"min_disk"`
	MinRAM    int            `json:"min_ram"`
	CreatedAt core.Timestamp `json:"created_at"`
}

type imagesEnvelope struct {
	Images []Image `json:"images"`
}

type Service struct {
	exec core.Executor
}

func New(exec core.Executor) *Service {
	return &Service{exec: exec}
}

func (s *Service) List(ctx context.Context) ([]Image, error) {
	var resp imagesEnvelope
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:         http.MethodGet,
		ServiceType:    core.ServiceTypeImage,
		PathTemplate:   "/images",
		EnforceVersion: pinnedVersion,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return []Image{}, nil
	}
	return resp.Images, nil
}

func (s *Service) Get(ctx context.Context, id string) (Image, bool, error) {
	var img Image
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:         http.MethodGet,
		ServiceType:    core.ServiceTypeImage,
		PathTemplate:   "/images/%s",
		PathParams:     []any{id},
		EnforceVersion: pinnedVersion,
	}, &img)
	if err != nil {
		return Image{}, false, err
	}
	if !result.Found {
		return Image{}, false, nil
	}
	return img, true, nil
}
