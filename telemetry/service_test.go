package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-openstack/core"
)

type fakeExecutor struct {
	descs   []core.RequestDescriptor
	respond func(desc core.RequestDescriptor, out any) (core.Result, error)
}

func (f *fakeExecutor) Execute(_ context.Context, desc core.RequestDescriptor, out any) (core.Result, error) {
	f.descs = append(f.descs, desc)
	return f.respond(desc, out)
}

func (f *fakeExecutor) ResolveEndpoint(context.Context, string) (string, error) {
	return "http://ceilometer:8777", nil
}

func TestListMeters(t *testing.T) {
	exec := &fakeExecutor{respond: func(_ core.RequestDescriptor, out any) (core.Result, error) {
		if out != nil {
			if err := json.Unmarshal([]byte(`[{"name":"cpu_util","type":"gauge","unit":"%","resource_id":"srv-1"}]`), out); err != nil {
				return core.Result{}, err
			}
		}
		return core.Result{Found: true, StatusCode: 200}, nil
	}}
	svc := New(exec)

	meters, err := svc.ListMeters(context.Background())
	if err != nil {
		t.Fatalf("list meters: %v", err)
	}
	if len(meters) != 1 || meters[0].Name != "cpu_util" {
		t.Fatalf("unexpected meters %+v", meters)
	}
	if exec.descs[0].PathTemplate != "/v2/meters" {
		t.Fatalf("unexpected path %q", exec.descs[0].PathTemplate)
	}
}

func TestSamplesSinceQuery(t *testing.T) {
	exec := &fakeExecutor{respond: func(_ core.RequestDescriptor, out any) (core.Result, error) {
		if out != nil {
			if err := json.Unmarshal([]byte(`[{"counter_name":"cpu_util","counter_volume":42.5,"resource_id":"srv-1","timestamp":"2026-01-10T12:00:00Z"}]`), out); err != nil {
				return core.Result{}, err
			}
		}
		return core.Result{Found: true, StatusCode: 200}, nil
	}}
	svc := New(exec)

	since := core.NewTimestamp(time.Date(2026, 1, 10, 11, 0, 0, 0, time.UTC))
	samples, err := svc.Samples(context.Background(), "cpu_util", since)
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	if len(samples) != 1 || samples[0].CounterVolume != 42.5 {
		t.Fatalf("unexpected samples %+v", samples)
	}

	desc := exec.descs[0]
	if desc.Query["q.field"] != "timestamp" || desc.Query["q.op"] != "ge" {
		t.Fatalf("unexpected query %#v", desc.Query)
	}
	if desc.Query["q.value"] != "2026-01-10T11:00:00Z" {
		t.Fatalf("since must use the shared wire layout, got %q", desc.Query["q.value"])
	}
}

func TestSamplesWithoutSinceOmitsQuery(t *testing.T) {
	exec := &fakeExecutor{respond: func(core.RequestDescriptor, any) (core.Result, error) {
		return core.Result{Found: false, StatusCode: 404}, nil
	}}
	svc := New(exec)

	samples, err := svc.Samples(context.Background(), "cpu_util", core.Timestamp{})
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	if len(samples) != 0 {
		t.Fatalf("expected empty result on absence, got %+v", samples)
	}
	if len(exec.descs[0].Query) != 0 {
		t.Fatalf("zero since must not add query terms, got %#v", exec.descs[0].Query)
	}
}
