// Package volume exposes typed callers against the block storage service.
package volume

import (
	"context"
	"net/http"

	"github.com/goliatone/go-openstack/core"
)

type VolumeStatus string

const (
	StatusCreating  VolumeStatus = "creating"
	StatusAvailable VolumeStatus = "available"
	StatusInUse     VolumeStatus = "in-use"
	StatusDeleting  VolumeStatus = "deleting"
	StatusError     VolumeStatus = "error"
	StatusUnknown   VolumeStatus = "unknown"
)

var volumeStatusTable = core.NewEnumTable(StatusUnknown, map[string]VolumeStatus{
	"creating":  StatusCreating,
	"available": StatusAvailable,
	"in-use":    StatusInUse,
	"deleting":  StatusDeleting,
	"error":     StatusError,
})

func (s *VolumeStatus) UnmarshalJSON(data []byte) error {
	return volumeStatusTable.DecodeJSON(data, (*VolumeStatus)(s))
}

type Volume struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    VolumeStatus   `json:"status"`
	Size      int            `json:"size"`
	CreatedAt core.Timestamp `json:"created_at"`
}

type CreateVolumeRequest struct {
	Name string
	Size int
}

type volumeEnvelope struct {
	Volume Volume `json:"volume"`
}

type volumesEnvelope struct {
	Volumes []Volume `json:"volumes"`
}

type Service struct {
	exec core.Executor
}

func New(exec core.Executor) *Service {
	return &Service{exec: exec}
}

func (s *Service) List(ctx context.Context) ([]Volume, error) {
	var resp volumesEnvelope
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeVolume,
		PathTemplate: "/volumes/detail",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return []Volume{}, nil
	}
	return resp.Volumes, nil
}

func (s *Service) Get(ctx context.Context, id string) (Volume, bool, error) {
	var resp volumeEnvelope
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeVolume,
		PathTemplate: "/volumes/%s",
		PathParams:   []any{id},
	}, &resp)
	if err != nil {
		return Volume{}, false, err
	}
	if !result.Found {
		return Volume{}, false, nil
	}
	return resp.Volume, true, nil
}

// Create is a creation call: an HTTP 413 surfaces as the over-limit error so
// callers can apply quota handling.
func (s *Service) Create(ctx context.Context, req CreateVolumeRequest) (Volume, error) {
	var resp volumeEnvelope
	_, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodPost,
		ServiceType:  core.ServiceTypeVolume,
		PathTemplate: "/volumes",
		Body: map[string]any{"volume": map[string]any{
			"name": req.Name,
			"size": req.Size,
		}},
		Creation: true,
	}, &resp)
	if err != nil {
		return Volume{}, err
	}
	return resp.Volume, nil
}

// Delete reports false when the volume was already absent.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodDelete,
		ServiceType:  core.ServiceTypeVolume,
		PathTemplate: "/volumes/%s",
		PathParams:   []any{id},
	}, nil)
	if err != nil {
		return false, err
	}
	return result.Found, nil
}
