// Package telemetry exposes typed callers against the metering service.
package telemetry

import (
	"context"
	"net/http"

	"github.com/goliatone/go-openstack/core"
)

type Meter struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Unit       string `json:"unit"`
	ResourceID string `json:"resource_id"`
	ProjectID  string `json:"project_id"`
}

type Sample struct {
	CounterName   string         `json:"counter_name"`
	CounterVolume float64        `json:"counter_volume"`
	CounterUnit   string         `json:"counter_unit"`
	ResourceID    string         `json:"resource_id"`
	Timestamp     core.Timestamp `json:"timestamp"`
}

type Service struct {
	exec core.Executor
}

func New(exec core.Executor) *Service {
	return &Service{exec: exec}
}

func (s *Service) ListMeters(ctx context.Context) ([]Meter, error) {
	var meters []Meter
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeTelemetry,
		PathTemplate: "/v2/meters",
	}, &meters)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return []Meter{}, nil
	}
	return meters, nil
}

// Samples queries one meter's samples since a timestamp, written with the
// same fixed UTC pattern used for response parsing.
func (s *Service) Samples(ctx context.Context, meterName string, since core.Timestamp) ([]Sample, error) {
	query := map[string]string{}
	if !since.Time.IsZero() {
		query["q.field"] = "timestamp"
		query["q.op"] = "ge"
		query["q.value"] = since.Time.UTC().Format(core.TimeLayout)
	}
	var samples []Sample
	result, err := s.exec.Execute(ctx, core.RequestDescriptor{
		Method:       http.MethodGet,
		ServiceType:  core.ServiceTypeTelemetry,
		PathTemplate: "/v2/meters/%s",
		PathParams:   []any{meterName},
		Query:        query,
	}, &samples)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return []Sample{}, nil
	}
	return samples, nil
}
